package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDashboardSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	output, err := Render(domain.DashboardSnapshot{
		Totals: domain.Totals{
			WorkoutMinutes:   75,
			CaloriesBurned:   620,
			CaloriesConsumed: 1450.5,
			Protein:          90,
			Carbs:            150,
			Fat:              40,
		},
		Workouts: []domain.Workout{
			{ID: 2, Type: "Running", DurationMinutes: 45, CaloriesBurned: 420, Notes: "tempo run", Date: now.Add(-2 * time.Hour)},
			{ID: 1, Type: "Yoga", DurationMinutes: 30, CaloriesBurned: 200, Date: now.AddDate(0, 0, -3)},
		},
		FoodLogs: []domain.FoodLog{
			{ID: 7, Label: "apple", Confidence: 0.92, Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3, CreatedAt: now.Add(-time.Hour)},
		},
		FetchedAt: now,
	}, RenderOptions{Now: now, User: "ada@example.com"})

	require.NoError(t, err)
	assert.Contains(t, output, "Fitness Dashboard")
	assert.Contains(t, output, "user: ada@example.com")
	assert.Contains(t, output, "workouts: 2")
	assert.Contains(t, output, "Workout minutes")
	assert.Contains(t, output, "620 kcal")
	assert.Contains(t, output, "1450.5 kcal")
	assert.Contains(t, output, "830.5 kcal")
	assert.Contains(t, output, "P 90g  C 150g  F 40g")
	assert.Contains(t, output, "Running")
	assert.Contains(t, output, "tempo run")
	assert.Contains(t, output, "(16:00)")
	assert.Contains(t, output, "(26 Feb)")
	assert.Contains(t, output, "apple")
	assert.Contains(t, output, "92%")
}

func TestRenderEmptyDashboard(t *testing.T) {
	output, err := Render(domain.DashboardSnapshot{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No workouts logged yet.")
	assert.Contains(t, output, "No food logs yet.")
	assert.Contains(t, output, "["+strings.Repeat("-", macroBarWidth)+"]")
	assert.NotContains(t, output, "updated")
}

func TestRenderHonorsLimit(t *testing.T) {
	workouts := []domain.Workout{
		{Type: "Running", DurationMinutes: 10, CaloriesBurned: 100},
		{Type: "Cycling", DurationMinutes: 10, CaloriesBurned: 100},
		{Type: "Swimming", DurationMinutes: 10, CaloriesBurned: 100},
	}

	output, err := Render(domain.DashboardSnapshot{Workouts: workouts}, RenderOptions{Limit: 2})

	require.NoError(t, err)
	assert.Contains(t, output, "Running")
	assert.Contains(t, output, "Cycling")
	assert.NotContains(t, output, "Swimming")
	assert.Contains(t, output, "workouts: 3")
}

func TestRenderMacroBarFillsWidth(t *testing.T) {
	bar := renderMacroBar(domain.Totals{Protein: 1, Carbs: 1, Fat: 1}, 10, newStyles())

	assert.Equal(t, 10, strings.Count(bar, "P")+strings.Count(bar, "C")+strings.Count(bar, "F"))
}

func TestFormatWhen(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, "09:15", formatWhen(time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "14 Feb", formatWhen(time.Date(2026, 2, 14, 9, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "31 Dec 2025", formatWhen(time.Date(2025, 12, 31, 9, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "2026-02-14 09:15", formatWhen(time.Date(2026, 2, 14, 9, 15, 0, 0, time.UTC), time.Time{}))
}
