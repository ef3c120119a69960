package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rybkr/gitgraph/internal/domain"
)

// EnvPrefix prefixes every environment variable, e.g. GITGRAPH_PORT.
const EnvPrefix = "GITGRAPH"

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Repo is the repository path.
	// Env: GITGRAPH_REPO (default: .)
	Repo string `envconfig:"REPO" default:"."`

	// GitPath pins the git executable.
	// Env: GITGRAPH_GIT_PATH
	GitPath string `envconfig:"GIT_PATH"`

	// DefaultLimit is the commit limit when a request names none.
	// Env: GITGRAPH_DEFAULT_LIMIT (default: 400)
	DefaultLimit int `envconfig:"DEFAULT_LIMIT" default:"400"`

	// Env: GITGRAPH_HOST (default: 127.0.0.1)
	Host string `envconfig:"HOST" default:"127.0.0.1"`

	// Env: GITGRAPH_PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is one of debug, info, warn, error.
	// Env: GITGRAPH_LOG_LEVEL (default: info)
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFormat is auto, console or json.
	// Env: GITGRAPH_LOG_FORMAT (default: auto)
	LogFormat string `envconfig:"LOG_FORMAT" default:"auto"`

	// PollInterval is how often the server re-reads history.
	// Env: GITGRAPH_POLL_INTERVAL (default: 5s)
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`

	// Watch enables filesystem notifications on the git directory.
	// Env: GITGRAPH_WATCH (default: true)
	Watch bool `envconfig:"WATCH" default:"true"`

	// Env: GITGRAPH_WATCH_DEBOUNCE (default: 100ms)
	WatchDebounce time.Duration `envconfig:"WATCH_DEBOUNCE" default:"100ms"`

	// AllowedOrigins is a comma-separated list of browser origins.
	// Env: GITGRAPH_ALLOWED_ORIGINS (default: *)
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig normalizes the environment values. Out of range values fall
// back to defaults; the limit is clamped like any requested limit.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	cfg := NewAppConfig()

	if e.Repo != "" {
		cfg.repo = e.Repo
	}
	cfg.gitPath = e.GitPath
	if e.DefaultLimit != 0 {
		cfg.defaultLimit = domain.ClampLimit(e.DefaultLimit)
	}
	if e.Host != "" {
		cfg.host = e.Host
	}
	if e.Port > 0 && e.Port < 65536 {
		cfg.port = e.Port
	}
	if e.LogLevel != "" {
		cfg.logLevel = strings.ToLower(e.LogLevel)
	}

	format, err := ParseLogFormat(e.LogFormat)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.logFormat = format

	if e.PollInterval > 0 {
		cfg.pollInterval = e.PollInterval
	}
	cfg.watch = e.Watch
	if e.WatchDebounce > 0 {
		cfg.watchDebounce = e.WatchDebounce
	}

	var origins []string
	for _, o := range strings.Split(e.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) > 0 {
		cfg.allowedOrigins = origins
	}

	return cfg, nil
}
