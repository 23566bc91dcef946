package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".fittrack"
	envPrefix  = "FT"

	KeyBaseURL        = "api.base_url"
	KeyTimeout        = "api.timeout"
	KeyPollInterval   = "poll.interval"
	KeySessionPath    = "session.path"
	KeyCredentialsDir = "credentials.dir"

	DefaultBaseURL      = "http://localhost:5000"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 1200 * time.Millisecond
)

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	PollInterval   time.Duration
	SessionPath    string
	CredentialsDir string
}

// Load reads ~/.fittrack/config.toml when present and overlays FT_* environment variables,
// e.g. FT_API_BASE_URL for api.base_url.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	root := filepath.Join(homeDir, configDir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(root)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeySessionPath, filepath.Join(root, "session.toml"))
	v.SetDefault(KeyCredentialsDir, filepath.Join(root, "credentials"))

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		BaseURL:        strings.TrimSpace(v.GetString(KeyBaseURL)),
		Timeout:        v.GetDuration(KeyTimeout),
		PollInterval:   v.GetDuration(KeyPollInterval),
		SessionPath:    expandHome(v.GetString(KeySessionPath), homeDir),
		CredentialsDir: expandHome(v.GetString(KeyCredentialsDir), homeDir),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	// Adapters configured from v see the expanded paths.
	v.Set(KeySessionPath, cfg.SessionPath)
	v.Set(KeyCredentialsDir, cfg.CredentialsDir)

	return cfg, nil
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", KeyBaseURL, c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", KeyBaseURL, c.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s %q: host is required", KeyBaseURL, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid %s %s: must be positive", KeyTimeout, c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid %s %s: must be positive", KeyPollInterval, c.PollInterval)
	}
	if strings.TrimSpace(c.SessionPath) == "" {
		return fmt.Errorf("%s is empty", KeySessionPath)
	}
	if strings.TrimSpace(c.CredentialsDir) == "" {
		return fmt.Errorf("%s is empty", KeyCredentialsDir)
	}

	return nil
}

func expandHome(path, homeDir string) string {
	path = strings.TrimSpace(path)
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
