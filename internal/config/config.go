// Package config loads server configuration from defaults, an optional
// config file, and environment variables — in increasing precedence.
//
// Environment variables use the PROMPTMASTER_ prefix:
//
//	PROMPTMASTER_ADDR=":9090"
//	PROMPTMASTER_JWT_SECRET=$(openssl rand -hex 32)
//	PROMPTMASTER_GEMINI_API_KEY=...
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime knob of the server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`
	// DBPath is the SQLite database file, or ":memory:".
	DBPath string `mapstructure:"db_path"`
	// JWTSecret signs session tokens. Required — there is no safe default
	// for a signing secret.
	JWTSecret string `mapstructure:"jwt_secret"`
	// GeminiAPIKey enables the AI endpoints. Optional.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	// GeminiModel overrides the default Gemini model. Optional.
	GeminiModel string `mapstructure:"gemini_model"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// CORSOrigins lists allowed browser origins. "*" allows all.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Load reads configuration. cfgFile may be empty, in which case a
// config.yaml is searched in the working directory and ~/.promptmaster,
// and is allowed to be absent entirely.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "promptmaster.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{"*"})

	v.SetEnvPrefix("PROMPTMASTER")
	v.AutomaticEnv()
	// Unmarshal only decodes keys viper already knows about, so bind each
	// one explicitly — otherwise an env-only value with no default (like
	// PROMPTMASTER_JWT_SECRET) never reaches the struct.
	for _, key := range []string{
		"addr", "db_path", "jwt_secret", "gemini_api_key",
		"gemini_model", "log_level", "cors_origins",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.promptmaster")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
		// No file is fine — env vars and defaults carry the day.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot safely run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt_secret is required (set PROMPTMASTER_JWT_SECRET)")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: jwt_secret must be at least 16 characters")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
