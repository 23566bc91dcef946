package cmd

import (
	"errors"
	"fmt"
	"strings"

	dashboardrender "github.com/bnema/fittrack-cli/internal/adapters/render/dashboard"
	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and show the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.session.Login(cmd.Context(), domain.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			return afterAuthentication(cmd, app, session, "Logged in as")
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var name string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.session.Register(cmd.Context(), domain.Profile{Name: name, Email: email, Password: password})
			if err != nil {
				return err
			}
			return afterAuthentication(cmd, app, session, "Registered")
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// afterAuthentication loads the dashboard for a new session. A failed load is reported
// without failing the sign-in.
func afterAuthentication(cmd *cobra.Command, app *app, session domain.Session, verb string) error {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, identityLabel(session.Identity))

	snapshot, err := app.dashboard.Refresh(cmd.Context(), session.Credential)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}

	return writeDashboard(cmd, app, snapshot, session.Identity, dashboardrender.RenderOptions{Limit: defaultListLimit})
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, wasLoggedIn := app.session.Current()
			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			if !wasLoggedIn {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := app.session.Whoami(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNotAuthenticated) {
					return fmt.Errorf("%w (run `ft login` first)", err)
				}
				return err
			}
			if asJSON {
				return writeJSON(cmd, identity)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), identityLabel(identity))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func identityLabel(identity domain.Identity) string {
	name := strings.TrimSpace(identity.Name)
	email := strings.TrimSpace(identity.Email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case email != "":
		return email
	case name != "":
		return name
	default:
		return fmt.Sprintf("user %d", identity.ID)
	}
}
