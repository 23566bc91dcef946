package api

import (
	"strings"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type dashboardResponse struct {
	Totals totalsPayload `json:"totals"`
}

type totalsPayload struct {
	WorkoutMinutes   int     `json:"workout_minutes"`
	CaloriesBurned   int     `json:"calories_burned"`
	CaloriesConsumed float64 `json:"calories_consumed"`
	Protein          float64 `json:"protein"`
	Carbs            float64 `json:"carbs"`
	Fat              float64 `json:"fat"`
}

type workoutPayload struct {
	ID              int64   `json:"id"`
	WorkoutType     string  `json:"workout_type"`
	DurationMinutes int     `json:"duration_minutes"`
	CaloriesBurned  int     `json:"calories_burned"`
	WorkoutDate     string  `json:"workout_date,omitempty"`
	Notes           *string `json:"notes"`
}

type createWorkoutPayload struct {
	WorkoutType     string `json:"workout_type"`
	DurationMinutes int    `json:"duration_minutes"`
	CaloriesBurned  int    `json:"calories_burned"`
	Notes           string `json:"notes"`
}

type foodLogPayload struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	CreatedAt  string  `json:"created_at"`
}

type analyzeResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type taskResponse struct {
	TaskID string             `json:"task_id"`
	Status string             `json:"status"`
	Result *taskResultPayload `json:"result"`
	Error  *string            `json:"error"`
}

type taskResultPayload struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
}

// Timestamps arrive either as RFC 3339 or as naive ISO-8601 UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}

	return time.Time{}
}

func (p userPayload) toDomain() domain.Identity {
	return domain.Identity{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: parseTime(p.CreatedAt),
	}
}

func (p totalsPayload) toDomain() domain.Totals {
	return domain.Totals{
		WorkoutMinutes:   p.WorkoutMinutes,
		CaloriesBurned:   p.CaloriesBurned,
		CaloriesConsumed: p.CaloriesConsumed,
		Protein:          p.Protein,
		Carbs:            p.Carbs,
		Fat:              p.Fat,
	}
}

func (p workoutPayload) toDomain() domain.Workout {
	notes := ""
	if p.Notes != nil {
		notes = *p.Notes
	}

	return domain.Workout{
		ID:              p.ID,
		Type:            p.WorkoutType,
		DurationMinutes: p.DurationMinutes,
		CaloriesBurned:  p.CaloriesBurned,
		Notes:           notes,
		Date:            parseTime(p.WorkoutDate),
	}
}

func (p foodLogPayload) toDomain() domain.FoodLog {
	return domain.FoodLog{
		ID:         p.ID,
		Label:      p.Label,
		Confidence: p.Confidence,
		Calories:   p.Calories,
		Protein:    p.Protein,
		Carbs:      p.Carbs,
		Fat:        p.Fat,
		CreatedAt:  parseTime(p.CreatedAt),
	}
}

func (p taskResponse) toDomain(fallbackID domain.TaskID) domain.AnalysisTask {
	task := domain.AnalysisTask{
		ID:     domain.TaskID(p.TaskID),
		Status: domain.TaskStatus(strings.ToLower(strings.TrimSpace(p.Status))),
	}
	if task.ID == "" {
		task.ID = fallbackID
	}
	if p.Error != nil {
		task.Error = strings.TrimSpace(*p.Error)
	}
	if p.Result != nil {
		task.Result = &domain.TaskResult{
			Label:      p.Result.Label,
			Confidence: p.Result.Confidence,
			Calories:   p.Result.Calories,
			Protein:    p.Result.Protein,
			Carbs:      p.Result.Carbs,
			Fat:        p.Result.Fat,
		}
	}

	return task
}
