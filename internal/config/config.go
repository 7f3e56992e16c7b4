// Package config loads runtime settings for the server and the terminal client.
//
// Settings are resolved in this order (highest precedence first):
//  1. Environment variables (SCENARIO_* prefix, plus PORT for the listen port)
//  2. The config file (scenario.yaml in the working directory, or an explicit path)
//  3. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"scenario-analysis/web/internal/analysis"
)

// Config is the full runtime configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// AnalysisConfig points at the analysis backend.
type AnalysisConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the HTTP front end.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var (
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidTimeout   = errors.New("invalid analysis timeout")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidOrigin    = errors.New("invalid allowed origin")
)

const (
	DefaultPort = "3000"
	EnvPrefix   = "SCENARIO"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.endpoint", analysis.DefaultEndpoint)
	v.SetDefault("analysis.timeout", analysis.DefaultTimeout)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	return v
}

// Load reads configuration. An empty path looks for an optional scenario.yaml
// in the working directory; an explicit path must exist. Overrides run after
// the file and environment are merged and before validation.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	v := newViper()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("scenario")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, override := range overrides {
		override(&cfg)
	}
	cfg.Server.AllowedOrigins = cleanOrigins(cfg.Server.AllowedOrigins)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"config_file": v.ConfigFileUsed(),
		"endpoint":    cfg.Analysis.Endpoint,
		"timeout":     cfg.Analysis.Timeout,
	}).Debug("configuration loaded")

	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func Validate(cfg *Config) error {
	if err := analysis.ValidateEndpoint(cfg.Analysis.Endpoint); err != nil {
		return err
	}
	if cfg.Analysis.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, cfg.Analysis.Timeout)
	}
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return ErrInvalidPort
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.Log.Format)
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		if !validOrigin(origin) {
			return fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
		}
	}
	return nil
}

// validOrigin accepts "*" or an absolute http(s) origin.
func validOrigin(origin string) bool {
	return origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}

func cleanOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
