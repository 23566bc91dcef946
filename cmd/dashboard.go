package cmd

import (
	"encoding/json"
	"fmt"

	dashboardrender "github.com/bnema/fittrack-cli/internal/adapters/render/dashboard"
	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/spf13/cobra"
)

const defaultListLimit = 5

func newDashboardCmd(app *app) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Refresh and display workout and nutrition totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.session.Require()
			if err != nil {
				return fmt.Errorf("%w (run `ft login` first)", err)
			}

			snapshot, err := app.dashboard.Refresh(cmd.Context(), session.Credential)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snapshot)
			}

			return writeDashboard(cmd, app, snapshot, session.Identity, dashboardrender.RenderOptions{Limit: limit})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "Entries shown per history list (0 for all)")

	return cmd
}

func writeDashboard(cmd *cobra.Command, app *app, snapshot domain.DashboardSnapshot, identity domain.Identity, opts dashboardrender.RenderOptions) error {
	opts.Now = app.now()
	opts.User = identityLabel(identity)

	rendered, err := app.renderDashboard(snapshot, opts)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
