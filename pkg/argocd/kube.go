package argocd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
)

// ApplicationResource is the ArgoCD Application custom resource
var ApplicationResource = schema.GroupVersionResource{
	Group:    "argoproj.io",
	Version:  "v1alpha1",
	Resource: "applications",
}

const defaultKubePollInterval = 5 * time.Second

// KubeClient implements Controller against the Application custom resources in the cluster
// ArgoCD runs in. Operations are requested through the `operation` field, the same way the
// ArgoCD API server does, and completion is observed on `status.operationState`.
type KubeClient struct {
	client    dynamic.Interface
	namespace string

	// PollInterval is how often operation and health progress is read back
	PollInterval time.Duration

	// Initiator is recorded as the user that initiated operations
	Initiator string
}

// NewKubeClient creates a Controller from a rest config, for instance one returned by
// controller-runtime's config loader
func NewKubeClient(conf *rest.Config, namespace string) (*KubeClient, error) {
	client, err := dynamic.NewForConfig(conf)
	if err != nil {
		return nil, fmt.Errorf("unable to create kubernetes client: %w", err)
	}

	return NewKubeClientForInterface(client, namespace), nil
}

// NewKubeClientForInterface wraps an existing dynamic client
func NewKubeClientForInterface(client dynamic.Interface, namespace string) *KubeClient {
	if namespace == "" {
		namespace = "argocd"
	}

	return &KubeClient{
		client:       client,
		namespace:    namespace,
		PollInterval: defaultKubePollInterval,
		Initiator:    "argocd-deployer",
	}
}

func (k *KubeClient) get(ctx context.Context, app string) (*unstructured.Unstructured, error) {
	obj, err := k.client.Resource(ApplicationResource).Namespace(k.namespace).Get(ctx, app, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not get application %s: %w", app, err)
	}

	return obj, nil
}

func (k *KubeClient) patch(ctx context.Context, app string, patch map[string]interface{}) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	_, err = k.client.Resource(ApplicationResource).Namespace(k.namespace).Patch(ctx, app, types.MergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("could not patch application %s: %w", app, err)
	}

	return nil
}

func (k *KubeClient) GetApplication(ctx context.Context, app string) (*Application, error) {
	obj, err := k.get(ctx, app)
	if err != nil {
		return nil, err
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return ParseApplication(data)
}

func (k *KubeClient) History(ctx context.Context, app string) ([]HistoryEntry, error) {
	obj, err := k.get(ctx, app)
	if err != nil {
		return nil, err
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return ParseHistoryJSON(data)
}

func (k *KubeClient) SetAutoSync(ctx context.Context, app string, enabled bool) (*OperationResult, error) {
	var automated interface{}

	if enabled {
		automated = map[string]interface{}{}
	}

	err := k.patch(ctx, app, map[string]interface{}{
		"spec": map[string]interface{}{
			"syncPolicy": map[string]interface{}{
				"automated": automated,
			},
		},
	})

	return kubeResult("set-sync-policy", app, OutcomeFailed, err)
}

func (k *KubeClient) Sync(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error) {
	requested := time.Now()

	err := k.patch(ctx, app, k.operation(map[string]interface{}{
		"prune": true,
	}))
	if err != nil {
		return kubeResult("sync", app, OutcomeFailed, err)
	}

	return k.awaitOperation(ctx, "sync", app, requested, timeout)
}

func (k *KubeClient) Rollback(ctx context.Context, app string, id HistoryID, timeout time.Duration) (*OperationResult, error) {
	obj, err := k.get(ctx, app)
	if err != nil {
		return kubeResult("rollback", app, OutcomeFailed, err)
	}

	if automated, found, _ := unstructured.NestedFieldNoCopy(obj.Object, "spec", "syncPolicy", "automated"); found && automated != nil {
		return kubeResult("rollback", app, OutcomeFailed, ErrAutoSyncEnabled)
	}

	history, _, err := unstructured.NestedSlice(obj.Object, "status", "history")
	if err != nil {
		return kubeResult("rollback", app, OutcomeFailed, err)
	}

	var target map[string]interface{}

	for _, h := range history {
		row, ok := h.(map[string]interface{})
		if !ok {
			continue
		}

		if rowID, found, _ := unstructured.NestedInt64(row, "id"); found && HistoryID(rowID) == id {
			target = row
		}
	}

	if target == nil {
		return kubeResult("rollback", app, OutcomeFailed, fmt.Errorf("application %s has no history entry %s", app, id))
	}

	sync := map[string]interface{}{
		"prune": true,
	}

	if revision, found, _ := unstructured.NestedString(target, "revision"); found {
		sync["revision"] = revision
	}

	if source, found, _ := unstructured.NestedMap(target, "source"); found {
		sync["source"] = source
	}

	requested := time.Now()

	if err := k.patch(ctx, app, k.operation(sync)); err != nil {
		return kubeResult("rollback", app, OutcomeFailed, err)
	}

	return k.awaitOperation(ctx, "rollback", app, requested, timeout)
}

func (k *KubeClient) WaitForHealth(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error) {
	deadline := time.Now().Add(timeout)

	for {
		a, err := k.GetApplication(ctx, app)
		if err == nil && a.Health == HealthHealthy {
			return kubeResult("wait", app, OutcomeSuccess, nil)
		}

		if !time.Now().Add(k.PollInterval).Before(deadline) {
			return kubeResult("wait", app, OutcomeTimedOut, fmt.Errorf("application %s not healthy after %s", app, timeout))
		}

		if err := sleepContext(ctx, k.PollInterval); err != nil {
			return kubeResult("wait", app, OutcomeFailed, err)
		}
	}
}

func (k *KubeClient) operation(sync map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"operation": map[string]interface{}{
			"initiatedBy": map[string]interface{}{
				"username": k.Initiator,
			},
			"sync": sync,
		},
	}
}

// awaitOperation waits until the controller has picked up the requested operation
// and reported a terminal phase for it
func (k *KubeClient) awaitOperation(ctx context.Context, op, app string, requested time.Time, timeout time.Duration) (*OperationResult, error) {
	deadline := time.Now().Add(timeout)

	for {
		obj, err := k.get(ctx, app)
		if err != nil {
			return kubeResult(op, app, OutcomeFailed, err)
		}

		_, pending, _ := unstructured.NestedFieldNoCopy(obj.Object, "operation")
		phase, _, _ := unstructured.NestedString(obj.Object, "status", "operationState", "phase")
		startedAt, _, _ := unstructured.NestedString(obj.Object, "status", "operationState", "startedAt")
		message, _, _ := unstructured.NestedString(obj.Object, "status", "operationState", "message")

		if !pending && startedAfter(startedAt, requested) {
			switch phase {
			case OperationPhaseSucceeded:
				return &OperationResult{Outcome: OutcomeSuccess, Output: nonEmpty(message)}, nil
			case "Failed", "Error":
				res, err := kubeResult(op, app, OutcomeFailed, fmt.Errorf("operation %s: %s", phase, message))
				res.Output = nonEmpty(message)

				return res, err
			}
		}

		if !time.Now().Add(k.PollInterval).Before(deadline) {
			return kubeResult(op, app, OutcomeTimedOut, fmt.Errorf("operation did not complete within %s", timeout))
		}

		if err := sleepContext(ctx, k.PollInterval); err != nil {
			return kubeResult(op, app, OutcomeFailed, err)
		}
	}
}

func kubeResult(op, app string, failure Outcome, err error) (*OperationResult, error) {
	if err == nil {
		return &OperationResult{Outcome: OutcomeSuccess}, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		failure = OutcomeTimedOut
	}

	return &OperationResult{Outcome: failure, Output: []string{err.Error()}}, &OperationError{
		Op:      op,
		App:     app,
		Outcome: failure,
		Err:     err,
	}
}

// startedAfter tolerates the second granularity of Kubernetes timestamps
func startedAfter(startedAt string, requested time.Time) bool {
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return false
	}

	return !t.Before(requested.Truncate(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}

	return []string{s}
}
