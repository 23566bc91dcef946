package application

import (
	"context"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/ports"
)

type WorkoutService struct {
	api       ports.WorkoutAPI
	refresher DashboardRefresher
}

func NewWorkoutService(api ports.WorkoutAPI, refresher DashboardRefresher) *WorkoutService {
	return &WorkoutService{api: api, refresher: refresher}
}

// Log creates a workout and refreshes the dashboard. When only the refresh fails the created
// workout is returned together with a *domain.RefreshError.
func (s *WorkoutService) Log(ctx context.Context, credential string, workout domain.NewWorkout) (domain.Workout, error) {
	if credential == "" {
		return domain.Workout{}, domain.ErrNotAuthenticated
	}
	if err := workout.Validate(); err != nil {
		return domain.Workout{}, err
	}

	created, err := s.api.CreateWorkout(ctx, credential, workout)
	if err != nil {
		return domain.Workout{}, err
	}

	if s.refresher == nil {
		return created, nil
	}
	if _, err := s.refresher.Refresh(ctx, credential); err != nil {
		return created, err
	}
	return created, nil
}
