package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dmitrymomot/jokeviewer/pkg/deepl"
	"github.com/dmitrymomot/jokeviewer/pkg/jokeapi"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Jokes  JokesConfig  `toml:"jokes"`
	DeepL  DeepLConfig  `toml:"deepl"`
	Viewer ViewerConfig `toml:"viewer"`
	Log    LogConfig    `toml:"log"`
	Sentry SentryConfig `toml:"sentry"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Address string `toml:"address"`
	// CookieSecret signs the viewer cookie. When empty, serve generates one
	// per process and sessions do not survive a restart.
	CookieSecret    string   `toml:"cookie_secret"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	PollTimeout     Duration `toml:"poll_timeout"`
	CookieSecure    bool     `toml:"cookie_secure"`
}

// JokesConfig configures the JokeAPI client.
type JokesConfig struct {
	BaseURL    string   `toml:"base_url"`
	Lang       string   `toml:"lang"`
	Amount     int      `toml:"amount"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// DeepLConfig configures the DeepL client.
type DeepLConfig struct {
	BaseURL    string   `toml:"base_url"`
	AuthKey    string   `toml:"auth_key"`
	Proxy      string   `toml:"proxy"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// ViewerConfig configures the session registry.
type ViewerConfig struct {
	IdleTTL     Duration `toml:"idle_ttl"`
	MaxSessions int      `toml:"max_sessions"`
}

// LogConfig configures the logger. File is used by the terminal UI, which
// cannot log to stdout.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `toml:"dsn"`
	Environment string `toml:"environment"`
}

// Duration wraps time.Duration for TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: Duration{30 * time.Second},
			PollTimeout:     Duration{20 * time.Second},
		},
		Jokes: JokesConfig{
			BaseURL:    jokeapi.DefaultBaseURL,
			Lang:       jokeapi.DefaultLang,
			Amount:     jokeapi.DefaultAmount,
			Timeout:    Duration{10 * time.Second},
			MaxRetries: 2,
		},
		DeepL: DeepLConfig{
			BaseURL:    deepl.DefaultBaseURL,
			Timeout:    Duration{10 * time.Second},
			MaxRetries: 2,
		},
		Viewer: ViewerConfig{
			IdleTTL:     Duration{viewer.DefaultIdleTTL},
			MaxSessions: viewer.DefaultMaxSessions,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Sentry: SentryConfig{
			Environment: "production",
		},
	}
}

// Load reads defaults, then the TOML file at path (skipped when path is
// empty), then environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(os.ExpandEnv(path), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for name, dst := range map[string]*string{
		"JOKEVIEWER_ADDRESS": &c.Server.Address,
		"COOKIE_SECRET":      &c.Server.CookieSecret,
		"JOKES_BASE_URL":     &c.Jokes.BaseURL,
		"DEEPL_AUTH_KEY":     &c.DeepL.AuthKey,
		"DEEPL_BASE_URL":     &c.DeepL.BaseURL,
		"SENTRY_DSN":         &c.Sentry.DSN,
		"LOG_LEVEL":          &c.Log.Level,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Server.Address == "" {
		invalid("server.address is empty")
	}
	if s := c.Server.CookieSecret; s != "" && len(s) < 32 {
		invalid("server.cookie_secret must be at least 32 bytes")
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		invalid("server.shutdown_timeout must be positive")
	}
	if c.Server.PollTimeout.Duration <= 0 {
		invalid("server.poll_timeout must be positive")
	}

	if !validURL(c.Jokes.BaseURL) {
		invalid("jokes.base_url %q is not an http(s) URL", c.Jokes.BaseURL)
	}
	if c.Jokes.Amount < 1 || c.Jokes.Amount > 10 {
		invalid("jokes.amount must be between 1 and 10")
	}
	if c.Jokes.Lang == "" {
		invalid("jokes.lang is empty")
	}
	if c.Jokes.MaxRetries < 0 || c.DeepL.MaxRetries < 0 {
		invalid("max_retries must not be negative")
	}

	if !validURL(c.DeepL.BaseURL) {
		invalid("deepl.base_url %q is not an http(s) URL", c.DeepL.BaseURL)
	}
	if c.DeepL.Proxy != "" && !validURL(c.DeepL.Proxy) {
		invalid("deepl.proxy %q is not an http(s) URL", c.DeepL.Proxy)
	}

	if c.Viewer.IdleTTL.Duration <= 0 {
		invalid("viewer.idle_ttl must be positive")
	}
	if c.Viewer.MaxSessions < 0 {
		invalid("viewer.max_sessions must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		invalid("log.format %q is not json or text", c.Log.Format)
	}

	return errors.Join(errs...)
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
