package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const macroBarWidth = 24

type RenderOptions struct {
	Now time.Time
	// Limit caps each history list. Zero shows everything.
	Limit int
	User  string
}

func renderView(snapshot domain.DashboardSnapshot, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("workouts: %d  food logs: %d", len(snapshot.Workouts), len(snapshot.FoodLogs))
	if user := strings.TrimSpace(opts.User); user != "" {
		header = fmt.Sprintf("user: %s  %s", user, header)
	}
	if !snapshot.FetchedAt.IsZero() {
		header += "  updated " + formatWhen(snapshot.FetchedAt, opts.Now)
	}

	lines := []string{
		s.title.Render("Fitness Dashboard"),
		s.header.Render(header),
		s.section.Render(renderTotals(snapshot.Totals, s)),
		s.section.Render(renderWorkouts(snapshot.Workouts, opts, s)),
		s.section.Render(renderFoodLogs(snapshot.FoodLogs, opts, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTotals(totals domain.Totals, s styles) string {
	stat := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, s.statKey.Render(fmt.Sprintf("%-18s", label)), s.statValue.Render(value))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.sectionHdr.Render("Totals"),
		stat("Workout minutes", fmt.Sprintf("%d", totals.WorkoutMinutes)),
		stat("Calories burned", fmt.Sprintf("%d kcal", totals.CaloriesBurned)),
		stat("Calories consumed", fmt.Sprintf("%s kcal", formatAmount(totals.CaloriesConsumed))),
		stat("Net calories", fmt.Sprintf("%s kcal", formatAmount(totals.CaloriesConsumed-float64(totals.CaloriesBurned)))),
		stat("Macros", fmt.Sprintf("P %sg  C %sg  F %sg", formatAmount(totals.Protein), formatAmount(totals.Carbs), formatAmount(totals.Fat))),
		renderMacroBar(totals, macroBarWidth, s),
	)
}

// renderMacroBar splits width between protein, carbs and fat by grams.
func renderMacroBar(totals domain.Totals, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	sum := totals.Protein + totals.Carbs + totals.Fat
	if sum <= 0 {
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.barBracket.Render("["),
			s.barEmpty.Render(strings.Repeat("-", width)),
			s.barBracket.Render("]"),
		)
	}

	protein := segmentWidth(totals.Protein, sum, width)
	carbs := segmentWidth(totals.Carbs, sum, width)
	if protein+carbs > width {
		carbs = width - protein
	}
	fat := width - protein - carbs

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.protein.Render(strings.Repeat("P", protein)),
		s.carbs.Render(strings.Repeat("C", carbs)),
		s.fat.Render(strings.Repeat("F", fat)),
		s.barBracket.Render("]"),
	)
}

func segmentWidth(part, sum float64, width int) int {
	filled := int(math.Round(float64(width) * part / sum))
	if filled < 0 {
		return 0
	}
	if filled > width {
		return width
	}
	return filled
}

func renderWorkouts(workouts []domain.Workout, opts RenderOptions, s styles) string {
	lines := []string{s.sectionHdr.Render("Recent workouts")}
	if len(workouts) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No workouts logged yet."))...)
	}

	for _, workout := range limit(workouts, opts.Limit) {
		line := s.item.Render(fmt.Sprintf("%-14s %4d min %5d kcal", workout.Type, workout.DurationMinutes, workout.CaloriesBurned))
		if !workout.Date.IsZero() {
			line += " " + s.meta.Render("("+formatWhen(workout.Date, opts.Now)+")")
		}
		if notes := strings.TrimSpace(workout.Notes); notes != "" {
			line += " " + s.meta.Render(notes)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderFoodLogs(logs []domain.FoodLog, opts RenderOptions, s styles) string {
	lines := []string{s.sectionHdr.Render("Recent food logs")}
	if len(logs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No food logs yet."))...)
	}

	for _, log := range limit(logs, opts.Limit) {
		line := s.item.Render(fmt.Sprintf("%-14s %5s kcal", log.Label, formatAmount(log.Calories)))
		macros := fmt.Sprintf("P %sg C %sg F %sg", formatAmount(log.Protein), formatAmount(log.Carbs), formatAmount(log.Fat))
		line += " " + s.meta.Render(macros)
		if log.Confidence > 0 {
			line += " " + s.meta.Render(fmt.Sprintf("%d%%", domain.TaskResult{Confidence: log.Confidence}.ConfidencePercent()))
		}
		if !log.CreatedAt.IsZero() {
			line += " " + s.meta.Render("("+formatWhen(log.CreatedAt, opts.Now)+")")
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func formatWhen(at, now time.Time) string {
	if now.IsZero() {
		return at.Format("2006-01-02 15:04")
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}
	if yearA == yearB {
		return at.Format("02 Jan")
	}

	return at.Format("02 Jan 2006")
}
