package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/fittrack-cli/internal/adapters/api"
	chainstore "github.com/bnema/fittrack-cli/internal/adapters/credentials/chain"
	dashboardrender "github.com/bnema/fittrack-cli/internal/adapters/render/dashboard"
	tomlrepo "github.com/bnema/fittrack-cli/internal/adapters/repo/toml"
	"github.com/bnema/fittrack-cli/internal/application"
	"github.com/bnema/fittrack-cli/internal/config"
	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/bnema/fittrack-cli/internal/logging"
	"github.com/bnema/fittrack-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	config          config.Config
	logger          *zap.Logger
	backend         ports.DashboardAPI
	session         *application.SessionService
	dashboard       *application.DashboardLoader
	poller          *application.TaskPoller
	workouts        *application.WorkoutService
	renderDashboard func(domain.DashboardSnapshot, dashboardrender.RenderOptions) (string, error)
	now             func() time.Time
}

func (a *app) wire(verbose bool, logOutput io.Writer) error {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(verbose, logOutput)

	repo, err := tomlrepo.NewSessionRepository(v)
	if err != nil {
		return fmt.Errorf("wire session repository: %w", err)
	}

	store, err := chainstore.NewPassFirstWithFileFallback(cfg.CredentialsDir)
	if err != nil {
		return fmt.Errorf("wire credential store chain: %w", err)
	}

	client := api.Client{
		BaseURL:        cfg.BaseURL,
		HTTPClient:     &http.Client{},
		RequestTimeout: cfg.Timeout,
		Logger:         logger,
	}
	clock := ports.SystemClock{}

	session := application.NewSessionService(client, repo, store, clock, logger)
	loader := application.NewDashboardLoader(client, clock, logger)
	poller := application.NewTaskPoller(client, loader, application.TaskPollerOptions{
		Interval: cfg.PollInterval,
		Logger:   logger,
	})

	// Polling must stop before the dashboard is cleared and the credential dropped.
	session.OnLogout(poller.Abandon)
	session.OnLogout(loader.Clear)

	*a = app{
		config:          cfg,
		logger:          logger,
		backend:         client,
		session:         session,
		dashboard:       loader,
		poller:          poller,
		workouts:        application.NewWorkoutService(client, loader),
		renderDashboard: dashboardrender.Render,
		now:             time.Now,
	}

	logger.Debug("wired app", zap.String("base_url", cfg.BaseURL), zap.Duration("poll_interval", cfg.PollInterval))
	return nil
}

func (a *app) close() {
	if a.poller != nil {
		a.poller.Abandon()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// credential returns the bearer token of the restored or freshly created session.
func (a *app) credential() (string, error) {
	session, err := a.session.Require()
	if err != nil {
		return "", fmt.Errorf("%w (run `ft login` first)", err)
	}
	return session.Credential, nil
}
