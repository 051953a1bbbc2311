// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package config loads MediaHub configuration.
//
// Values are layered: built-in defaults, then a YAML file, then
// command-line flags, then secret environment variables.
package config

import (
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/mediahub/mediahub/internal/logging"
)

// Environment variables that carry secrets.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvJWTSecret    = "MEDIAHUB_JWT_SECRET"
	EnvResendAPIKey = "MEDIAHUB_RESEND_API_KEY"
)

// MinJWTSecretLength is the shortest accepted signing secret in bytes.
const MinJWTSecretLength = 32

// Mail providers.
const (
	MailProviderLog    = "log"
	MailProviderResend = "resend"
)

// Config is the complete service configuration.
type Config struct {
	Server        ServerConfig        `json:"server,omitempty"`
	Database      DatabaseConfig      `json:"database,omitempty"`
	Auth          AuthConfig          `json:"auth,omitempty"`
	Mail          MailConfig          `json:"mail,omitempty"`
	Log           LogConfig           `json:"log,omitempty"`
	Observability ObservabilityConfig `json:"observability,omitempty"`
	Janitor       JanitorConfig       `json:"janitor,omitempty"`
}

// ServerConfig configures the public HTTP API.
type ServerConfig struct {
	Addr            string        `json:"addr,omitempty" jsonschema:"description=API listen address"`
	CORSOrigins     []string      `json:"cors_origins,omitempty" jsonschema:"description=Allowed CORS origins as glob patterns"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" jsonschema:"type=string,description=Graceful shutdown budget (Go duration)"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL             string `json:"url,omitempty" jsonschema:"description=PostgreSQL URL; prefer the DATABASE_URL environment variable"`
	MaxConns        int32  `json:"max_conns,omitempty" jsonschema:"minimum=1"`
	ConnectAttempts uint64 `json:"connect_attempts,omitempty" jsonschema:"minimum=1"`
	AutoMigrate     bool   `json:"auto_migrate,omitempty" jsonschema:"description=Apply pending migrations on serve"`
}

// AuthConfig configures tokens and password hashing.
type AuthConfig struct {
	JWTSecret   string        `json:"jwt_secret,omitempty" jsonschema:"description=HS256 signing secret; prefer MEDIAHUB_JWT_SECRET"`
	Issuer      string        `json:"issuer,omitempty"`
	IdentityTTL time.Duration `json:"identity_ttl,omitempty" jsonschema:"type=string"`
	ResetTTL    time.Duration `json:"reset_ttl,omitempty" jsonschema:"type=string"`
	Argon2      Argon2Config  `json:"argon2,omitempty"`
}

// Argon2Config holds argon2id cost parameters. Zero values use defaults.
type Argon2Config struct {
	Iterations  uint32 `json:"iterations,omitempty"`
	MemoryKiB   uint32 `json:"memory_kib,omitempty"`
	Parallelism uint8  `json:"parallelism,omitempty"`
}

// MailConfig configures password-reset delivery.
type MailConfig struct {
	Provider     string        `json:"provider,omitempty" jsonschema:"enum=log,enum=resend"`
	ResetURL     string        `json:"reset_url,omitempty" jsonschema:"description=Password reset page URL"`
	From         string        `json:"from,omitempty"`
	ResendAPIKey string        `json:"resend_api_key,omitempty"`
	ResendAPIURL string        `json:"resend_api_url,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" jsonschema:"type=string"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// ObservabilityConfig configures the metrics and health listener.
type ObservabilityConfig struct {
	Addr string `json:"addr,omitempty" jsonschema:"description=Metrics and health listen address; empty disables"`
}

// JanitorConfig configures the expired-record sweeper.
type JanitorConfig struct {
	Interval time.Duration `json:"interval,omitempty" jsonschema:"type=string"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			ConnectAttempts: 5,
		},
		Auth: AuthConfig{
			Issuer:      "mediahub",
			IdentityTTL: 24 * time.Hour,
			ResetTTL:    time.Hour,
		},
		Mail: MailConfig{
			Provider: MailProviderLog,
			ResetURL: "http://localhost:3000/reset-password",
			Timeout:  5 * time.Second,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Observability: ObservabilityConfig{
			Addr: "127.0.0.1:9100",
		},
		Janitor: JanitorConfig{
			Interval: 10 * time.Minute,
		},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":             "server.addr",
	"cors-origin":      "server.cors_origins",
	"metrics-addr":     "observability.addr",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"identity-ttl":     "auth.identity_ttl",
	"reset-ttl":        "auth.reset_ttl",
	"mail-provider":    "mail.provider",
	"reset-url":        "mail.reset_url",
	"janitor-interval": "janitor.interval",
	"auto-migrate":     "database.auto_migrate",
}

// RegisterFlags adds the flags that override configuration values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Server.Addr, "API listen address")
	fs.StringSlice("cors-origin", nil, "allowed CORS origin glob (repeatable)")
	fs.String("metrics-addr", d.Observability.Addr, "metrics/health listen address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Duration("identity-ttl", d.Auth.IdentityTTL, "identity token lifetime")
	fs.Duration("reset-ttl", d.Auth.ResetTTL, "reset token lifetime")
	fs.String("mail-provider", d.Mail.Provider, "reset link delivery (log or resend)")
	fs.String("reset-url", d.Mail.ResetURL, "password reset page URL")
	fs.Duration("janitor-interval", d.Janitor.Interval, "expired token sweep interval")
	fs.Bool("auto-migrate", false, "apply pending migrations before serving")
}

// LoadOptions selects the sources for Load.
type LoadOptions struct {
	// Path of a YAML file. Empty skips the file.
	Path string
	// Flags registered with RegisterFlags. Nil skips flags.
	Flags *pflag.FlagSet
	// Getenv reads secret variables. Nil uses os.Getenv.
	Getenv func(string) string
}

// Load builds a Config from defaults, file, flags and environment. It does
// not validate the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if opts.Path != "" {
		if err := k.Load(file.Provider(opts.Path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", opts.Path).Wrap(err)
		}
	}

	if opts.Flags != nil {
		fs := opts.Flags
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			if f.Value.Type() == "stringSlice" {
				v, _ := fs.GetStringSlice(f.Name)
				return key, v
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").With("path", opts.Path).Wrap(err)
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		cfg.Database.URL = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := getenv(EnvResendAPIKey); v != "" {
		cfg.Mail.ResendAPIKey = v
	}

	return &cfg, nil
}

// Validate checks the configuration needed to serve. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	for _, origin := range c.Server.CORSOrigins {
		if _, err := glob.Compile(origin); err != nil {
			add("server.cors_origins: invalid pattern " + origin)
		}
	}
	if c.Database.URL == "" {
		add("database.url is required (or set " + EnvDatabaseURL + ")")
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		add("auth.jwt_secret must be at least 32 bytes (or set " + EnvJWTSecret + ")")
	}
	if c.Auth.IdentityTTL <= 0 {
		add("auth.identity_ttl must be positive")
	}
	if c.Auth.ResetTTL <= 0 || c.Auth.ResetTTL >= c.Auth.IdentityTTL {
		add("auth.reset_ttl must be positive and shorter than auth.identity_ttl")
	}
	if u, err := url.Parse(c.Mail.ResetURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("mail.reset_url must be an absolute URL")
	}
	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderResend:
		if c.Mail.ResendAPIKey == "" {
			add("mail.resend_api_key is required for the resend provider (or set " + EnvResendAPIKey + ")")
		}
		if c.Mail.From == "" {
			add("mail.from is required for the resend provider")
		}
	default:
		add("mail.provider must be one of log, resend")
	}
	if !slices.Contains([]string{"json", "text"}, c.Log.Format) {
		add("log.format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level must be debug, info, warn or error")
	}
	if c.Janitor.Interval <= 0 {
		add("janitor.interval must be positive")
	}

	if len(problems) > 0 {
		return oops.Code("CONFIG_INVALID").
			With("problems", problems).
			Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
