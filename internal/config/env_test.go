package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"REPO", "GIT_PATH", "DEFAULT_LIMIT", "HOST", "PORT", "LOG_LEVEL", "LOG_FORMAT",
	"POLL_INTERVAL", "WATCH", "WATCH_DEBOUNCE", "ALLOWED_ORIGINS",
}

// clearEnvVars blanks every GITGRAPH_ variable for the test and unsets it,
// so envconfig falls back to the struct tag defaults.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		key := EnvPrefix + "_" + name
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	env, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ".", env.Repo)
	assert.Equal(t, 400, env.DefaultLimit)
	assert.Equal(t, "127.0.0.1", env.Host)
	assert.Equal(t, 8080, env.Port)
	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, "auto", env.LogFormat)
	assert.Equal(t, 5*time.Second, env.PollInterval)
	assert.True(t, env.Watch)
	assert.Equal(t, 100*time.Millisecond, env.WatchDebounce)
	assert.Equal(t, "*", env.AllowedOrigins)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	clearEnvVars(t)

	env, err := LoadFromEnv()
	require.NoError(t, err)
	fromEnv, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, NewAppConfig(), fromEnv)
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GITGRAPH_REPO", "/src/project")
	t.Setenv("GITGRAPH_DEFAULT_LIMIT", "9000")
	t.Setenv("GITGRAPH_PORT", "9090")
	t.Setenv("GITGRAPH_LOG_LEVEL", "DEBUG")
	t.Setenv("GITGRAPH_LOG_FORMAT", "json")
	t.Setenv("GITGRAPH_POLL_INTERVAL", "30s")
	t.Setenv("GITGRAPH_WATCH", "false")
	t.Setenv("GITGRAPH_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000 ,")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "/src/project", cfg.Repo())
	assert.Equal(t, 2000, cfg.DefaultLimit())
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.False(t, cfg.Watch())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins())
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GITGRAPH_PORT", "not-a-port")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestToAppConfig_RejectsUnknownLogFormat(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GITGRAPH_LOG_FORMAT", "xml")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	_, err = env.ToAppConfig()
	assert.ErrorContains(t, err, "unknown log format")
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GITGRAPH_PORT=7000\nGITGRAPH_REPO=/from/dotenv\n"), 0o644))
	t.Setenv("GITGRAPH_REPO", "/from/env")

	cfg, err := Load(path)
	require.NoError(t, err)

	// godotenv does not override variables that are already set.
	assert.Equal(t, "/from/env", cfg.Repo())
	assert.Equal(t, 7000, cfg.Port())
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	clearEnvVars(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port())
}

func TestAppConfigOverrides(t *testing.T) {
	cfg := NewAppConfig().
		WithRepo("/r").
		WithGitPath("/opt/git").
		WithListen("", 9999).
		WithLogLevel("WARN")

	assert.Equal(t, "/r", cfg.Repo())
	assert.Equal(t, "/opt/git", cfg.GitPath())
	assert.Equal(t, DefaultHost, cfg.Host())
	assert.Equal(t, 9999, cfg.Port())
	assert.Equal(t, "warn", cfg.LogLevel())

	same := cfg.WithRepo("").WithGitPath("").WithListen("", 0).WithLogLevel("")
	assert.Equal(t, cfg, same)
}
