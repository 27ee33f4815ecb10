// Package config loads and validates push service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Push    PushConfig    `mapstructure:"push"`
	DB      DBConfig      `mapstructure:"db"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig holds the shared secret presented by the cron scheduler.
type AuthConfig struct {
	CronSecret string `mapstructure:"cron_secret"`
}

// PushConfig carries VAPID credentials and delivery knobs.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"`
	Concurrency     int    `mapstructure:"concurrency"`
	TTLSeconds      int    `mapstructure:"ttl_seconds"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the datastore.
type DBConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// NotifyConfig governs the ingestion loop.
type NotifyConfig struct {
	WindowMinutes       int `mapstructure:"window_minutes"`
	PollIntervalMinutes int `mapstructure:"poll_interval_minutes"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("push.concurrency", 8)
	v.SetDefault("push.ttl_seconds", 3600)
	v.SetDefault("push.timeout_seconds", 10)
	v.SetDefault("db.provider", "postgres")
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("notify.window_minutes", 6)
	v.SetDefault("notify.poll_interval_minutes", 0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.CronSecret == "" {
		return fmt.Errorf("auth.cron_secret must be set")
	}
	if c.Push.Concurrency <= 0 {
		return fmt.Errorf("push.concurrency must be > 0")
	}
	if c.Notify.WindowMinutes <= 0 {
		return fmt.Errorf("notify.window_minutes must be > 0")
	}
	switch c.DB.Provider {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when db.provider is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown db.provider %q", c.DB.Provider)
	}
	return nil
}

// Window returns the trailing fetch window as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.Notify.WindowMinutes) * time.Minute
}

// PollInterval returns the self-scheduling interval; zero disables it.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Notify.PollIntervalMinutes) * time.Minute
}
