// Package config provides application configuration.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rybkr/gitgraph/internal/domain"
)

// Default configuration values.
const (
	DefaultRepo          = "."
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 8080
	DefaultLogLevel      = "info"
	DefaultPollInterval  = 5 * time.Second
	DefaultWatchDebounce = 100 * time.Millisecond
)

// LogFormat selects the log encoder.
type LogFormat string

const (
	LogFormatAuto    LogFormat = "auto"
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// AppConfig is the normalized application configuration.
type AppConfig struct {
	repo           string
	gitPath        string
	defaultLimit   int
	host           string
	port           int
	logLevel       string
	logFormat      LogFormat
	pollInterval   time.Duration
	watch          bool
	watchDebounce  time.Duration
	allowedOrigins []string
}

// NewAppConfig returns a configuration holding the defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		repo:           DefaultRepo,
		defaultLimit:   domain.DefaultLimit,
		host:           DefaultHost,
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatAuto,
		pollInterval:   DefaultPollInterval,
		watch:          true,
		watchDebounce:  DefaultWatchDebounce,
		allowedOrigins: []string{"*"},
	}
}

// Repo is the path of the repository to graph.
func (c AppConfig) Repo() string { return c.repo }

// GitPath is an explicit git executable, or "" to search PATH.
func (c AppConfig) GitPath() string { return c.gitPath }

// DefaultLimit is the commit limit used when a request names none.
func (c AppConfig) DefaultLimit() int { return c.defaultLimit }

// Host is the interface the server binds to.
func (c AppConfig) Host() string { return c.host }

// Port is the port the server listens on.
func (c AppConfig) Port() int { return c.port }

// Addr is the host:port the server listens on.
func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// LogLevel is the minimum log level name.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat is the log encoder selection.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// PollInterval is how often the server re-collects the graph.
func (c AppConfig) PollInterval() time.Duration { return c.pollInterval }

// Watch reports whether filesystem watching is enabled.
func (c AppConfig) Watch() bool { return c.watch }

// WatchDebounce is the quiet period after a filesystem event.
func (c AppConfig) WatchDebounce() time.Duration { return c.watchDebounce }

// AllowedOrigins lists CORS and websocket origins; "*" allows any.
func (c AppConfig) AllowedOrigins() []string {
	out := make([]string, len(c.allowedOrigins))
	copy(out, c.allowedOrigins)
	return out
}

// WithRepo returns a copy with the repository path replaced.
func (c AppConfig) WithRepo(path string) AppConfig {
	if path != "" {
		c.repo = path
	}
	return c
}

// WithGitPath returns a copy with the git executable replaced.
func (c AppConfig) WithGitPath(path string) AppConfig {
	if path != "" {
		c.gitPath = path
	}
	return c
}

// WithListen returns a copy with a non-empty host or positive port applied.
func (c AppConfig) WithListen(host string, port int) AppConfig {
	if host != "" {
		c.host = host
	}
	if port > 0 {
		c.port = port
	}
	return c
}

// WithLogLevel returns a copy with the log level replaced.
func (c AppConfig) WithLogLevel(level string) AppConfig {
	if level != "" {
		c.logLevel = strings.ToLower(level)
	}
	return c
}

// WithWatch returns a copy with filesystem watching switched on or off.
func (c AppConfig) WithWatch(watch bool) AppConfig {
	c.watch = watch
	return c
}

// WithAllowedOrigins returns a copy with a non-empty origin list applied.
func (c AppConfig) WithAllowedOrigins(origins []string) AppConfig {
	if len(origins) > 0 {
		c.allowedOrigins = append([]string(nil), origins...)
	}
	return c
}

// ParseLogFormat validates a log format name.
func ParseLogFormat(s string) (LogFormat, error) {
	switch f := LogFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return LogFormatAuto, nil
	case LogFormatAuto, LogFormatConsole, LogFormatJSON:
		return f, nil
	case "pretty":
		return LogFormatConsole, nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}
