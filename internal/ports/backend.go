package ports

import (
	"context"

	"github.com/bnema/fittrack-cli/internal/domain"
)

type AuthAPI interface {
	Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, profile domain.Profile) (domain.Session, error)
	Me(ctx context.Context, credential string) (domain.Identity, error)
}

type DashboardAPI interface {
	Totals(ctx context.Context, credential string) (domain.Totals, error)
	Workouts(ctx context.Context, credential string) ([]domain.Workout, error)
	FoodLogs(ctx context.Context, credential string) ([]domain.FoodLog, error)
}

type WorkoutAPI interface {
	CreateWorkout(ctx context.Context, credential string, workout domain.NewWorkout) (domain.Workout, error)
}

type FoodAnalysisAPI interface {
	AnalyzeFood(ctx context.Context, credential string, image domain.ImageUpload) (domain.TaskID, error)
	Task(ctx context.Context, credential string, id domain.TaskID) (domain.AnalysisTask, error)
}
