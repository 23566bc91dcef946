package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newWorkoutCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Log and list workouts",
	}

	cmd.AddCommand(newWorkoutAddCmd(app), newWorkoutListCmd(app))

	return cmd
}

func newWorkoutAddCmd(app *app) *cobra.Command {
	var workout domain.NewWorkout

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credential, err := app.credential()
			if err != nil {
				return err
			}

			created, err := app.workouts.Log(cmd.Context(), credential, workout)
			var refreshErr *domain.RefreshError
			switch {
			case errors.As(err, &refreshErr):
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", refreshErr)
			case err != nil:
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %d min, %d kcal\n", created.Type, created.DurationMinutes, created.CaloriesBurned)
			return err
		},
	}

	cmd.Flags().StringVar(&workout.Type, "type", "", "Workout type, e.g. Running")
	cmd.Flags().IntVar(&workout.DurationMinutes, "duration", 0, "Duration in minutes")
	cmd.Flags().IntVar(&workout.CaloriesBurned, "calories", 0, "Calories burned")
	cmd.Flags().StringVar(&workout.Notes, "notes", "", "Optional notes")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("duration")
	_ = cmd.MarkFlagRequired("calories")

	return cmd
}

func newWorkoutListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged workouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credential, err := app.credential()
			if err != nil {
				return err
			}

			workouts, err := app.backend.Workouts(cmd.Context(), credential)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, workouts)
			}
			if len(workouts) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No workouts logged yet.")
				return err
			}

			for _, workout := range workouts {
				line := fmt.Sprintf("%d\t%s\t%d min\t%d kcal", workout.ID, workout.Type, workout.DurationMinutes, workout.CaloriesBurned)
				if !workout.Date.IsZero() {
					line += "\t" + workout.Date.Format("2006-01-02")
				}
				if workout.Notes != "" {
					line += "\t" + workout.Notes
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
