package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"homeserve/services/scheduling"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Comma-separated proxy CIDRs whose forwarded headers are believed. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// Storage: "mongo" or "memory".
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`

	// Redis configuration, used by the distributed booking lock.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`

	// Locking: "memory" or "redis".
	LockBackend    string `mapstructure:"LOCK_BACKEND"`
	LockTTLSeconds int    `mapstructure:"LOCK_TTL_SECONDS"`

	// Scheduling engine tuning.
	DefaultTimezone        string `mapstructure:"SCHEDULING_DEFAULT_TIMEZONE"`
	SlotMinutes            int    `mapstructure:"SCHEDULING_SLOT_MINUTES"`
	BufferMinutes          int    `mapstructure:"SCHEDULING_BUFFER_MINUTES"`
	TravelMinutes          int    `mapstructure:"SCHEDULING_TRAVEL_MINUTES"`
	AlternativeLimit       int    `mapstructure:"SCHEDULING_ALTERNATIVE_LIMIT"`
	AlternativeDays        int    `mapstructure:"SCHEDULING_ALTERNATIVE_DAYS"`
	PreferredWindowMinutes int    `mapstructure:"SCHEDULING_PREFERRED_WINDOW_MINUTES"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("STORAGE_BACKEND", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "homeserve")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 3)
	v.SetDefault("LOCK_BACKEND", "memory")
	v.SetDefault("LOCK_TTL_SECONDS", 15)
	v.SetDefault("SCHEDULING_DEFAULT_TIMEZONE", "UTC")
	v.SetDefault("SCHEDULING_SLOT_MINUTES", 120)
	v.SetDefault("SCHEDULING_BUFFER_MINUTES", 20)
	v.SetDefault("SCHEDULING_TRAVEL_MINUTES", 20)
	v.SetDefault("SCHEDULING_ALTERNATIVE_LIMIT", 5)
	v.SetDefault("SCHEDULING_ALTERNATIVE_DAYS", 14)
	v.SetDefault("SCHEDULING_PREFERRED_WINDOW_MINUTES", 120)
}

// LoadConfig reads config.yaml from the working directory or ./config,
// applies environment overrides and defaults, and stores the result in AppConfig.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	AppConfig = cfg
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be mongo or memory, got %q", c.StorageBackend)
	}
	switch c.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("LOCK_BACKEND must be memory or redis, got %q", c.LockBackend)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("SCHEDULING_DEFAULT_TIMEZONE: %w", err)
	}
	return nil
}

// Scheduling projects the engine settings.
func (c Config) Scheduling() scheduling.Config {
	cfg := scheduling.DefaultConfig()
	cfg.DefaultTimezone = c.DefaultTimezone
	cfg.SlotMinutes = c.SlotMinutes
	cfg.BufferMinutes = c.BufferMinutes
	cfg.TravelMinutes = c.TravelMinutes
	cfg.AlternativeLimit = c.AlternativeLimit
	cfg.AlternativeDays = c.AlternativeDays
	cfg.PreferredWindow = time.Duration(c.PreferredWindowMinutes) * time.Minute
	return cfg
}

// TrustedProxyList splits TrustedProxies; nil means no proxy is trusted.
func (c Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LockTTL is the lease of a distributed booking lock.
func (c Config) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
