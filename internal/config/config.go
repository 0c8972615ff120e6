package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	CREST    CRESTConfig    `mapstructure:"crest"`
	SSO      SSOConfig      `mapstructure:"sso"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	InternalPort string        `mapstructure:"internal_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	URL               string        `mapstructure:"url"`
	MaxConnections    int           `mapstructure:"max_connections"`
	MaxIdleTime       time.Duration `mapstructure:"max_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	PingTimeout       time.Duration `mapstructure:"ping_timeout"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// AuthConfig contains session token validation configuration
type AuthConfig struct {
	PublicKeyURL    string        `mapstructure:"public_key_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// CRESTConfig describes the remote fleet API
type CRESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SSOConfig describes the identity provider used to refresh character tokens
type SSOConfig struct {
	TokenURL      string        `mapstructure:"token_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RefreshMargin time.Duration `mapstructure:"refresh_margin"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

// TimeoutsConfig contains various timeout configurations
type TimeoutsConfig struct {
	HTTPMiddleware     time.Duration `mapstructure:"http_middleware"`
	JWTValidatorClient time.Duration `mapstructure:"jwt_validator_client"`
	GracefulShutdown   time.Duration `mapstructure:"graceful_shutdown"`
}

// MetricsConfig contains metrics collection configuration
type MetricsConfig struct {
	UpdateInterval time.Duration `mapstructure:"update_interval"`
}

// requiredFields maps configuration keys to the environment variables that set them
var requiredFields = map[string]string{
	"database.url":         "FLEET_SVC_DATABASE_URL",
	"redis.url":            "FLEET_SVC_REDIS_URL",
	"server.port":          "FLEET_SVC_SERVER_PORT",
	"server.internal_port": "FLEET_SVC_SERVER_INTERNAL_PORT",
	"auth.public_key_url":  "FLEET_SVC_AUTH_PUBLIC_KEY_URL",
	"sso.client_id":        "FLEET_SVC_SSO_CLIENT_ID",
	"sso.client_secret":    "FLEET_SVC_SSO_CLIENT_SECRET",
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/fleet-service")

	v.SetEnvPrefix("FLEET_SVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so bind every required key explicitly
	for field, envVar := range requiredFields {
		if err := v.BindEnv(field, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envVar, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "5m")
	v.SetDefault("database.health_check_period", "1m")
	v.SetDefault("database.ping_timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.max_connections", 10)
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.ping_timeout", "5s")

	v.SetDefault("auth.refresh_interval", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")

	// The remote API lives on a single production host
	v.SetDefault("crest.base_url", "https://crest-tq.eveonline.com")
	v.SetDefault("crest.timeout", "10s")

	v.SetDefault("sso.token_url", "https://login.eveonline.com/oauth/token")
	v.SetDefault("sso.timeout", "10s")
	v.SetDefault("sso.refresh_margin", "10s")
	v.SetDefault("sso.token_lifetime", "1200s")
	v.SetDefault("sso.lock_ttl", "30s")

	v.SetDefault("timeouts.http_middleware", "60s")
	v.SetDefault("timeouts.jwt_validator_client", "10s")
	v.SetDefault("timeouts.graceful_shutdown", "30s")

	v.SetDefault("metrics.update_interval", "10s")
}

// Validate validates the configuration and ensures required fields are present
func (c *Config) Validate() error {
	values := map[string]string{
		"database.url":         c.Database.URL,
		"redis.url":            c.Redis.URL,
		"server.port":          c.Server.Port,
		"server.internal_port": c.Server.InternalPort,
		"auth.public_key_url":  c.Auth.PublicKeyURL,
		"sso.client_id":        c.SSO.ClientID,
		"sso.client_secret":    c.SSO.ClientSecret,
	}

	for field, envVar := range requiredFields {
		if values[field] == "" {
			return fmt.Errorf("required configuration field '%s' is not set (use environment variable %s)", field, envVar)
		}
	}

	timeouts := map[string]time.Duration{
		"server.read_timeout":   c.Server.ReadTimeout,
		"server.write_timeout":  c.Server.WriteTimeout,
		"database.ping_timeout": c.Database.PingTimeout,
		"redis.ping_timeout":    c.Redis.PingTimeout,
		"crest.timeout":         c.CREST.Timeout,
		"sso.timeout":           c.SSO.Timeout,
		"sso.lock_ttl":          c.SSO.LockTTL,
	}

	for name, timeout := range timeouts {
		if timeout <= 0 {
			return fmt.Errorf("timeout '%s' must be positive, got %v", name, timeout)
		}
		if timeout > 10*time.Minute {
			return fmt.Errorf("timeout '%s' seems too large, got %v", name, timeout)
		}
	}

	if c.SSO.RefreshMargin < 0 {
		return fmt.Errorf("sso.refresh_margin cannot be negative, got %v", c.SSO.RefreshMargin)
	}
	if c.SSO.TokenLifetime <= c.SSO.RefreshMargin {
		return fmt.Errorf("sso.token_lifetime (%v) must exceed sso.refresh_margin (%v)", c.SSO.TokenLifetime, c.SSO.RefreshMargin)
	}
	// The refresh lock must outlive the SSO call plus the credential re-read and save.
	if c.SSO.LockTTL < 2*c.SSO.Timeout {
		return fmt.Errorf("sso.lock_ttl (%v) must be at least twice sso.timeout (%v)", c.SSO.LockTTL, c.SSO.Timeout)
	}

	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
	}
	if c.Redis.MaxConnections <= 0 {
		return fmt.Errorf("redis.max_connections must be positive, got %d", c.Redis.MaxConnections)
	}
	if c.Redis.MaxRetries < 0 {
		return fmt.Errorf("redis.max_retries cannot be negative, got %d", c.Redis.MaxRetries)
	}

	return nil
}
