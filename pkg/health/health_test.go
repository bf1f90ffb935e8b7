package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	mock_argocd "github.com/porter-dev/argocd-deployer/pkg/argocd/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newMonitor(t *testing.T, readings ...argocd.HealthStatus) (*Monitor, *fakeClock, *mock_argocd.MockController) {
	ctrl := gomock.NewController(t)
	controller := mock_argocd.NewMockController(ctrl)

	calls := make([]*gomock.Call, 0, len(readings))

	for _, r := range readings {
		calls = append(calls, controller.EXPECT().
			GetApplication(gomock.Any(), "guestbook").
			Return(&argocd.Application{Name: "guestbook", Health: r}, nil))
	}

	gomock.InOrder(calls...)

	clock := &fakeClock{now: time.Date(2022, 10, 1, 12, 0, 0, 0, time.UTC)}

	m := NewMonitor(controller, logger.NewNop())
	m.Sleep = clock.Sleep
	m.Now = clock.Now

	return m, clock, controller
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   argocd.HealthStatus
		want argocd.HealthStatus
	}{
		{argocd.HealthHealthy, argocd.HealthHealthy},
		{argocd.HealthDegraded, argocd.HealthDegraded},
		{argocd.HealthProgressing, argocd.HealthProgressing},
		{argocd.HealthMissing, argocd.HealthMissing},
		{argocd.HealthSuspended, argocd.HealthUnknown},
		{"", argocd.HealthUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.in), string(tt.in))
	}
}

func TestObserve_Healthy(t *testing.T) {
	m, clock, _ := newMonitor(t, argocd.HealthProgressing, argocd.HealthProgressing, argocd.HealthHealthy)

	obs, err := m.Observe(context.Background(), "guestbook", 10*time.Second, time.Minute, false)
	require.NoError(t, err)

	assert.True(t, obs.Healthy())
	assert.Equal(t, argocd.HealthHealthy, obs.Status)
	assert.Equal(t, 3, obs.Polls)
	assert.Equal(t, 20*time.Second, obs.Elapsed)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, clock.sleeps)
}

func TestObserve_FailFastStopsAfterFirstBadReading(t *testing.T) {
	m, clock, _ := newMonitor(t, argocd.HealthDegraded)

	obs, err := m.Observe(context.Background(), "guestbook", 10*time.Second, 5*time.Minute, true)
	require.NoError(t, err)

	assert.Equal(t, argocd.OutcomeFailed, obs.Outcome)
	assert.Equal(t, argocd.HealthDegraded, obs.Status)
	assert.Equal(t, 1, obs.Polls)
	assert.Empty(t, clock.sleeps)
}

func TestObserve_DegradedKeepsPollingWithoutFailFast(t *testing.T) {
	m, _, _ := newMonitor(t, argocd.HealthDegraded, argocd.HealthMissing, argocd.HealthHealthy)

	obs, err := m.Observe(context.Background(), "guestbook", 10*time.Second, 5*time.Minute, false)
	require.NoError(t, err)

	assert.True(t, obs.Healthy())
	assert.Equal(t, 3, obs.Polls)
}

func TestObserve_TimesOut(t *testing.T) {
	readings := make([]argocd.HealthStatus, 7)
	for i := range readings {
		readings[i] = argocd.HealthProgressing
	}

	m, clock, _ := newMonitor(t, readings...)

	obs, err := m.Observe(context.Background(), "guestbook", 10*time.Second, time.Minute, false)
	require.NoError(t, err)

	assert.Equal(t, argocd.OutcomeTimedOut, obs.Outcome)
	assert.Equal(t, argocd.HealthProgressing, obs.Status)
	assert.Equal(t, 7, obs.Polls)
	assert.Equal(t, time.Minute, obs.Elapsed)
	assert.Len(t, clock.sleeps, 6)
}

func TestObserve_ControllerErrorIsUnknownReading(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := mock_argocd.NewMockController(ctrl)

	gomock.InOrder(
		controller.EXPECT().GetApplication(gomock.Any(), "guestbook").Return(nil, errors.New("connection refused")),
		controller.EXPECT().GetApplication(gomock.Any(), "guestbook").Return(&argocd.Application{Health: argocd.HealthHealthy}, nil),
	)

	clock := &fakeClock{now: time.Now()}

	m := NewMonitor(controller, logger.NewNop())
	m.Sleep = clock.Sleep
	m.Now = clock.Now

	obs, err := m.Observe(context.Background(), "guestbook", 10*time.Second, time.Minute, true)
	require.NoError(t, err)

	assert.True(t, obs.Healthy())
	assert.Equal(t, 2, obs.Polls)
}

func TestObserve_CancelledContext(t *testing.T) {
	m, _, _ := newMonitor(t, argocd.HealthProgressing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs, err := m.Observe(ctx, "guestbook", 10*time.Second, time.Minute, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, argocd.OutcomeTimedOut, obs.Outcome)
	assert.Equal(t, 1, obs.Polls)
}
