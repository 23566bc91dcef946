package domain

import (
	"fmt"
	"strings"
	"time"
)

type Totals struct {
	WorkoutMinutes   int
	CaloriesBurned   int
	CaloriesConsumed float64
	Protein          float64
	Carbs            float64
	Fat              float64
}

type Workout struct {
	ID              int64
	Type            string
	DurationMinutes int
	CaloriesBurned  int
	Notes           string
	Date            time.Time
}

type NewWorkout struct {
	Type            string
	DurationMinutes int
	CaloriesBurned  int
	Notes           string
}

func (w NewWorkout) Validate() error {
	if strings.TrimSpace(w.Type) == "" {
		return fmt.Errorf("%w: workout type is required", ErrInvalidWorkout)
	}
	if w.DurationMinutes < 1 {
		return fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidWorkout)
	}
	if w.CaloriesBurned < 1 {
		return fmt.Errorf("%w: calories burned must be at least 1", ErrInvalidWorkout)
	}
	return nil
}

type FoodLog struct {
	ID         int64
	Label      string
	Confidence float64
	Calories   float64
	Protein    float64
	Carbs      float64
	Fat        float64
	CreatedAt  time.Time
}

// DashboardSnapshot is replaced wholesale on every refresh and never mutated after it is
// published.
type DashboardSnapshot struct {
	Totals    Totals
	Workouts  []Workout
	FoodLogs  []FoodLog
	FetchedAt time.Time
}
