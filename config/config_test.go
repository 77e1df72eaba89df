package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jokeviewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 10, cfg.Jokes.Amount)
	require.Equal(t, "https://v2.jokeapi.dev", cfg.Jokes.BaseURL)
	require.Equal(t, 30*time.Minute, cfg.Viewer.IdleTTL.Duration)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
[server]
address = "127.0.0.1:9000"
poll_timeout = "5s"

[jokes]
amount = 3

[deepl]
auth_key = "key:fx"
base_url = "https://api.deepl.com/v2"

[viewer]
idle_ttl = "1h30m"
max_sessions = 0

[log]
format = "text"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	require.Equal(t, 5*time.Second, cfg.Server.PollTimeout.Duration)
	require.Equal(t, 3, cfg.Jokes.Amount)
	require.Equal(t, "key:fx", cfg.DeepL.AuthKey)
	require.Equal(t, "https://api.deepl.com/v2", cfg.DeepL.BaseURL)
	require.Equal(t, 90*time.Minute, cfg.Viewer.IdleTTL.Duration)
	require.Zero(t, cfg.Viewer.MaxSessions)
	require.Equal(t, "text", cfg.Log.Format)

	// Untouched keys keep their defaults.
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Duration)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(writeFile(t, "[viewer]\nidle_ttl = \"soon\"\n"))
		require.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(writeFile(t, "[server]\nport = 8080\n"))
		require.ErrorIs(t, err, config.ErrUnknownKey)
		require.Contains(t, err.Error(), "server.port")
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(writeFile(t, "[jokes]\namount = 11\n[log]\nlevel = \"loud\"\n"))
		require.ErrorIs(t, err, config.ErrInvalid)
		require.Contains(t, err.Error(), "jokes.amount")
		require.Contains(t, err.Error(), "log.level")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty address", func(c *config.Config) { c.Server.Address = "" }, "server.address"},
		{"short secret", func(c *config.Config) { c.Server.CookieSecret = "short" }, "cookie_secret"},
		{"relative url", func(c *config.Config) { c.Jokes.BaseURL = "/jokes" }, "jokes.base_url"},
		{"ftp url", func(c *config.Config) { c.DeepL.BaseURL = "ftp://deepl.com" }, "deepl.base_url"},
		{"bad proxy", func(c *config.Config) { c.DeepL.Proxy = "localhost" }, "deepl.proxy"},
		{"zero amount", func(c *config.Config) { c.Jokes.Amount = 0 }, "jokes.amount"},
		{"negative retries", func(c *config.Config) { c.DeepL.MaxRetries = -1 }, "max_retries"},
		{"zero ttl", func(c *config.Config) { c.Viewer.IdleTTL.Duration = 0 }, "viewer.idle_ttl"},
		{"negative sessions", func(c *config.Config) { c.Viewer.MaxSessions = -1 }, "viewer.max_sessions"},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, config.ErrInvalid)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JOKEVIEWER_ADDRESS", ":7070")
	t.Setenv("DEEPL_AUTH_KEY", "env-key")
	t.Setenv("JOKES_BASE_URL", "http://localhost:9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("COOKIE_SECRET", "")

	cfg, err := config.Load(writeFile(t, "[server]\naddress = \":9000\"\n[deepl]\nauth_key = \"file-key\"\n"))
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Address)
	require.Equal(t, "env-key", cfg.DeepL.AuthKey)
	require.Equal(t, "http://localhost:9999", cfg.Jokes.BaseURL)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Empty(t, cfg.Server.CookieSecret, "empty variables are ignored")

	cfg, err = config.Load("")
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Address)
}
