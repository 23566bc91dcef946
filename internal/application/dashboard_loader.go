package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardLoader fetches totals, workouts and food logs as one unit and publishes them as a
// single snapshot. A failed refresh leaves the published snapshot untouched.
type DashboardLoader struct {
	api    ports.DashboardAPI
	clock  ports.Clock
	logger *zap.Logger

	mu        sync.RWMutex
	snapshot  *domain.DashboardSnapshot
	epoch     uint64
	started   uint64
	committed uint64
}

var _ DashboardRefresher = (*DashboardLoader)(nil)

func NewDashboardLoader(api ports.DashboardAPI, clock ports.Clock, logger *zap.Logger) *DashboardLoader {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DashboardLoader{api: api, clock: clock, logger: logger}
}

func (l *DashboardLoader) Refresh(ctx context.Context, credential string) (domain.DashboardSnapshot, error) {
	if credential == "" {
		return domain.DashboardSnapshot{}, &domain.RefreshError{Err: domain.ErrNotAuthenticated}
	}

	l.mu.Lock()
	l.started++
	seq := l.started
	epoch := l.epoch
	l.mu.Unlock()

	var (
		totals   domain.Totals
		workouts []domain.Workout
		foodLogs []domain.FoodLog
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		totals, err = l.api.Totals(groupCtx, credential)
		if err != nil {
			return fmt.Errorf("load totals: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		workouts, err = l.api.Workouts(groupCtx, credential)
		if err != nil {
			return fmt.Errorf("load workouts: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		foodLogs, err = l.api.FoodLogs(groupCtx, credential)
		if err != nil {
			return fmt.Errorf("load food logs: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		l.logger.Debug("dashboard refresh failed", zap.Uint64("seq", seq), zap.Error(err))
		return domain.DashboardSnapshot{}, &domain.RefreshError{Err: err}
	}

	snapshot := domain.DashboardSnapshot{
		Totals:    totals,
		Workouts:  workouts,
		FoodLogs:  foodLogs,
		FetchedAt: l.clock.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// A refresh that outlived a Clear, or lost the race to a newer refresh, is dropped.
	if epoch != l.epoch || seq < l.committed {
		l.logger.Debug("dashboard refresh discarded", zap.Uint64("seq", seq))
		return domain.DashboardSnapshot{}, &domain.RefreshError{Err: domain.ErrRefreshDiscarded}
	}
	l.committed = seq
	l.snapshot = &snapshot

	return snapshot, nil
}

func (l *DashboardLoader) Snapshot() (domain.DashboardSnapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.snapshot == nil {
		return domain.DashboardSnapshot{}, false
	}
	return *l.snapshot, true
}

// Clear discards the published snapshot and invalidates refreshes still in flight.
func (l *DashboardLoader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.epoch++
	l.snapshot = nil
}
