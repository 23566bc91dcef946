package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardLoaderRefreshPublishesSnapshot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeDashboardAPI{
		totals:   domain.Totals{WorkoutMinutes: 45, CaloriesBurned: 400, CaloriesConsumed: 1200.5},
		workouts: []domain.Workout{{ID: 1, Type: "Running", DurationMinutes: 45, CaloriesBurned: 400}},
		foodLogs: []domain.FoodLog{{ID: 7, Label: "apple", Calories: 95}},
	}
	loader := NewDashboardLoader(api, fixedClock{now: now}, nil)

	_, ok := loader.Snapshot()
	assert.False(t, ok)

	snapshot, err := loader.Refresh(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, 45, snapshot.Totals.WorkoutMinutes)
	assert.Len(t, snapshot.Workouts, 1)
	assert.Len(t, snapshot.FoodLogs, 1)
	assert.Equal(t, now, snapshot.FetchedAt)
	assert.Equal(t, int32(3), api.calls.Load())

	published, ok := loader.Snapshot()
	require.True(t, ok)
	assert.Equal(t, snapshot, published)
}

func TestDashboardLoaderPartialFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	api := &fakeDashboardAPI{
		totals:   domain.Totals{WorkoutMinutes: 30},
		workouts: []domain.Workout{{ID: 1, Type: "Cycling"}},
	}
	loader := NewDashboardLoader(api, fixedClock{now: time.Now()}, nil)

	previous, err := loader.Refresh(context.Background(), "token-1")
	require.NoError(t, err)

	api.totals = domain.Totals{WorkoutMinutes: 90}
	api.workoutsErr = &domain.RequestError{StatusCode: 500, Message: "database unavailable"}

	_, err = loader.Refresh(context.Background(), "token-1")
	require.Error(t, err)

	var refreshErr *domain.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Contains(t, err.Error(), "database unavailable")

	current, ok := loader.Snapshot()
	require.True(t, ok)
	assert.Equal(t, previous, current)
	assert.Equal(t, 30, current.Totals.WorkoutMinutes)
}

func TestDashboardLoaderPartialFailureWithoutSnapshotStaysEmpty(t *testing.T) {
	t.Parallel()

	api := &fakeDashboardAPI{foodLogsErr: errors.New("boom")}
	loader := NewDashboardLoader(api, nil, nil)

	_, err := loader.Refresh(context.Background(), "token-1")
	require.Error(t, err)

	_, ok := loader.Snapshot()
	assert.False(t, ok)
}

func TestDashboardLoaderClearDiscardsInFlightRefresh(t *testing.T) {
	t.Parallel()

	api := &fakeDashboardAPI{
		totalsEntered: make(chan struct{}, 1),
		totalsGate:    make(chan struct{}),
	}
	loader := NewDashboardLoader(api, nil, nil)

	result := make(chan error, 1)
	go func() {
		_, err := loader.Refresh(context.Background(), "token-1")
		result <- err
	}()
	waitSignal(t, api.totalsEntered)

	loader.Clear()
	close(api.totalsGate)

	select {
	case err := <-result:
		assert.ErrorIs(t, err, domain.ErrRefreshDiscarded)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return")
	}

	_, ok := loader.Snapshot()
	assert.False(t, ok)
}

func TestDashboardLoaderRequiresCredential(t *testing.T) {
	t.Parallel()

	api := &fakeDashboardAPI{}
	loader := NewDashboardLoader(api, nil, nil)

	_, err := loader.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Zero(t, api.calls.Load())
}
