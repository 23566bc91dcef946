package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bnema/fittrack-cli/internal/application"
	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/spf13/cobra"
)

type analyzeOutput struct {
	TaskID     string             `json:"task_id"`
	State      string             `json:"state"`
	Message    string             `json:"message"`
	Result     *domain.TaskResult `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	RefreshErr string             `json:"refresh_error,omitempty"`
}

func newFoodCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Analyze meal photos and list food logs",
	}

	cmd.AddCommand(newFoodAnalyzeCmd(app), newFoodLogsCmd(app))

	return cmd
}

func newFoodAnalyzeCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload a meal photo and wait for the recognition result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credential, err := app.credential()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer file.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			image := domain.ImageUpload{FileName: filepath.Base(args[0]), Content: file}
			outcome, err := runAnalyzeSpinner(ctx, cmd.ErrOrStderr(), app.poller, credential, image)
			if err != nil {
				return err
			}

			return writeAnalyzeOutcome(cmd, outcome, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeAnalyzeOutcome(cmd *cobra.Command, outcome application.TaskOutcome, asJSON bool) error {
	if outcome.RefreshErr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", outcome.RefreshErr)
	}

	if asJSON {
		out := analyzeOutput{
			TaskID:  string(outcome.TaskID),
			State:   string(outcome.State),
			Message: outcome.Message,
			Result:  outcome.Result,
		}
		if outcome.Err != nil {
			out.Error = outcome.Err.Error()
		}
		if outcome.RefreshErr != nil {
			out.RefreshErr = outcome.RefreshErr.Error()
		}
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
	}

	switch outcome.State {
	case application.PollerCompleted:
		if asJSON {
			return nil
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		if err != nil || outcome.Result == nil {
			return err
		}
		result := outcome.Result
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.0f kcal  protein %.1fg  carbs %.1fg  fat %.1fg\n", result.Calories, result.Protein, result.Carbs, result.Fat)
		return err
	case application.PollerFailed:
		return errors.New(outcome.Message)
	default:
		return domain.ErrTaskAbandoned
	}
}

func newFoodLogsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List food logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credential, err := app.credential()
			if err != nil {
				return err
			}

			logs, err := app.backend.FoodLogs(cmd.Context(), credential)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, logs)
			}
			if len(logs) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No food logs yet.")
				return err
			}

			for _, log := range logs {
				line := fmt.Sprintf("%d\t%s\t%.0f kcal\tP %.1fg C %.1fg F %.1fg", log.ID, log.Label, log.Calories, log.Protein, log.Carbs, log.Fat)
				if !log.CreatedAt.IsZero() {
					line += "\t" + log.CreatedAt.Format("2006-01-02 15:04")
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
