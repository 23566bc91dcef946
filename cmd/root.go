package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "ft",
		Short:         "fittrack CLI (ft): log workouts and analyze meals",
		Long:          "ft talks to a fittrack backend: sign in, review workout and nutrition totals, log workouts and send meal photos for asynchronous food recognition.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.wire(verbose, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if _, _, err := app.session.Restore(cmd.Context()); err != nil {
				return fmt.Errorf("restore session: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newDashboardCmd(app),
		newWorkoutCmd(app),
		newFoodCmd(app),
	)

	return rootCmd
}
