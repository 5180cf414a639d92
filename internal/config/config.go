package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

// ServerConfig deliberately has no write timeout: the event-stream endpoint
// holds response writes open for the lifetime of a subscription.
type ServerConfig struct {
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds"`
	IdleTimeoutSeconds int `mapstructure:"idle_timeout_seconds"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	PolicyPath    string `mapstructure:"policy_path"`
}

type SSEConfig struct {
	// BufferSize is the per-connection event buffer. A connection that falls
	// this many events behind starts losing them.
	BufferSize int `mapstructure:"buffer_size"`
}

type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SSE       SSEConfig       `mapstructure:"sse"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Derived
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	TokenTTL        time.Duration
	RateLimitWindow time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = 60
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Auth.PolicyPath == "" {
		c.Auth.PolicyPath = "acl.json"
	}
	if c.SSE.BufferSize == 0 {
		c.SSE.BufferSize = 16
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 20
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}

	c.ReadTimeout = time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
	c.IdleTimeout = time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
	c.TokenTTL = time.Duration(c.Auth.TokenTTLHours) * time.Hour
	c.RateLimitWindow = time.Duration(c.RateLimit.WindowSeconds) * time.Second
	return &c, nil
}
