// Package config loads service settings. Priority, highest first: process
// environment, .env file, config.yaml, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	Seed     SeedConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env  string
	Port string
}

// DatabaseConfig selects the gorm driver and connection string.
type DatabaseConfig struct {
	Driver      string // postgres or sqlite
	DSN         string
	AutoMigrate bool
	LogLevel    string // silent, error, warn, info
	SlowQuery   time.Duration
}

// JWTConfig holds token settings
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// SeedConfig is the administrator created on first start.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
}

// devSecret is only accepted outside production.
const devSecret = "dev-insecure-secret-change"

// legacy env names kept so existing deployments keep working
var envAliases = map[string]string{
	"database.dsn":          "DB_DSN",
	"database.driver":       "DB_DRIVER",
	"database.auto_migrate": "DB_AUTO_MIGRATE",
	"jwt.secret":            "JWT_SECRET",
	"app.port":              "PORT",
}

// Loader owns the viper instance so the file can be watched after Load.
type Loader struct {
	v *viper.Viper
}

// NewLoader searches for config.yaml in dir (or the working directory when empty).
func NewLoader(dir string) *Loader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8081")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_query", 200*time.Millisecond)
	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_password", "admin123")

	v.SetEnvPrefix("CUSTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		_ = v.BindEnv(key, "CUSTDESK_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	return &Loader{v: v}
}

// Load reads the optional files and builds a validated Config.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	cfg := l.build()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile is the file in use, or "" when running from env and defaults only.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the rebuilt config whenever the config file changes.
func (l *Loader) Watch(onChange func(fsnotify.Event, *Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		onChange(e, l.build())
	})
	l.v.WatchConfig()
}

func (l *Loader) build() *Config {
	v := l.v
	secret := v.GetString("jwt.secret")
	if secret == "" && v.GetString("app.env") != "production" {
		secret = devSecret
	}
	return &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("database.driver")),
			DSN:         v.GetString("database.dsn"),
			AutoMigrate: v.GetBool("database.auto_migrate"),
			LogLevel:    v.GetString("database.log_level"),
			SlowQuery:   v.GetDuration("database.slow_query"),
		},
		JWT: JWTConfig{
			Secret:     secret,
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Seed: SeedConfig{
			AdminUsername: v.GetString("seed.admin_username"),
			AdminPassword: v.GetString("seed.admin_password"),
		},
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt ttl values must be positive")
	}
	return nil
}

// LoadDotEnv copies key=value pairs from path into the process environment
// without overwriting variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range dv.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); !exists {
			_ = os.Setenv(name, dv.GetString(key))
		}
	}
	return nil
}
