package argocd

import (
	"fmt"
	"sort"
	"time"

	"github.com/Jeffail/gabs"
)

// HealthStatus is the health ArgoCD reports for an application
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "Healthy"
	HealthDegraded    HealthStatus = "Degraded"
	HealthProgressing HealthStatus = "Progressing"
	HealthMissing     HealthStatus = "Missing"
	HealthUnknown     HealthStatus = "Unknown"
	HealthSuspended   HealthStatus = "Suspended"
)

// OperationPhaseSucceeded is the phase of an operation that completed successfully
const OperationPhaseSucceeded = "Succeeded"

// Application is the subset of an ArgoCD application's state the orchestrator reads
type Application struct {
	Name      string
	Namespace string
	Labels    map[string]string

	// SyncRevision is the source revision the application is currently synced to
	SyncRevision string
	SyncStatus   string
	Health       HealthStatus

	// OperationPhase and OperationRevision describe the last operation the controller ran
	OperationPhase    string
	OperationRevision string
	AutoSyncEnabled   bool
}

// LastSuccessfulRevision returns the revision produced by the last successful operation,
// falling back to the currently synced revision
func (a *Application) LastSuccessfulRevision() string {
	if a.OperationPhase == OperationPhaseSucceeded && a.OperationRevision != "" {
		return a.OperationRevision
	}

	return a.SyncRevision
}

// HistoryEntry is one row of an application's deployment history
type HistoryEntry struct {
	ID         HistoryID
	Revision   string
	DeployedAt time.Time
}

// SortHistory orders entries oldest first by history ID, which ArgoCD assigns monotonically
func SortHistory(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
}

// ParseApplication reads the JSON document returned by `argocd app get -o json`
// or the Application custom resource itself
func ParseApplication(data []byte) (*Application, error) {
	doc, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse application: %w", err)
	}

	app := &Application{
		Name:              stringAt(doc, "metadata.name"),
		Namespace:         stringAt(doc, "spec.destination.namespace"),
		Labels:            map[string]string{},
		SyncRevision:      stringAt(doc, "status.sync.revision"),
		SyncStatus:        stringAt(doc, "status.sync.status"),
		Health:            HealthStatus(stringAt(doc, "status.health.status")),
		OperationPhase:    stringAt(doc, "status.operationState.phase"),
		OperationRevision: stringAt(doc, "status.operationState.syncResult.revision"),
		AutoSyncEnabled:   doc.ExistsP("spec.syncPolicy.automated") && doc.Path("spec.syncPolicy.automated").Data() != nil,
	}

	if app.Namespace == "" {
		app.Namespace = stringAt(doc, "metadata.namespace")
	}

	if app.SyncRevision == "" {
		app.SyncRevision = firstStringAt(doc, "status.sync.revisions")
	}

	if app.OperationRevision == "" {
		app.OperationRevision = firstStringAt(doc, "status.operationState.syncResult.revisions")
	}

	if app.Health == "" {
		app.Health = HealthUnknown
	}

	if labels, err := doc.Path("metadata.labels").ChildrenMap(); err == nil {
		for k, v := range labels {
			if s, ok := v.Data().(string); ok {
				app.Labels[k] = s
			}
		}
	}

	return app, nil
}

// ParseHistoryJSON reads `status.history` out of an application document
func ParseHistoryJSON(data []byte) ([]HistoryEntry, error) {
	doc, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse application history: %w", err)
	}

	entries := make([]HistoryEntry, 0)

	if !doc.ExistsP("status.history") {
		return entries, nil
	}

	rows, err := doc.Path("status.history").Children()
	if err != nil {
		return nil, fmt.Errorf("status.history is not a list: %w", err)
	}

	for _, row := range rows {
		id, ok := row.Path("id").Data().(float64)
		if !ok {
			continue
		}

		entry := HistoryEntry{
			ID:       HistoryID(id),
			Revision: stringAt(row, "revision"),
		}

		if entry.Revision == "" {
			entry.Revision = firstStringAt(row, "revisions")
		}

		if deployedAt, err := time.Parse(time.RFC3339, stringAt(row, "deployedAt")); err == nil {
			entry.DeployedAt = deployedAt
		}

		entries = append(entries, entry)
	}

	SortHistory(entries)

	return entries, nil
}

func stringAt(doc *gabs.Container, path string) string {
	if s, ok := doc.Path(path).Data().(string); ok {
		return s
	}

	return ""
}

func firstStringAt(doc *gabs.Container, path string) string {
	children, err := doc.Path(path).Children()
	if err != nil || len(children) == 0 {
		return ""
	}

	s, _ := children[0].Data().(string)

	return s
}
