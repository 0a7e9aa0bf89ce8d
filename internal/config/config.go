package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Env             string        `yaml:"env" env:"APP_ENV" env-default:"development"`
	Host            string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	BasePath        string        `yaml:"base-path" env:"BASE_PATH" env-default:"/"`
	TokenTTLMinutes int           `yaml:"token-ttl-minutes" env:"TOKEN_TTL_MINUTES" env-default:"10"`
	AllowedOrigins  []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:","`
	Rules           Rules         `yaml:"rules"`
	RateLimit       RateLimit     `yaml:"rate-limit"`
	Heartbeat       Heartbeat     `yaml:"heartbeat"`
	Storage         string        `yaml:"storage" env:"CREDENTIAL_STORAGE" env-default:"memory"`
	Redis           Redis         `yaml:"redis"`
	SweepInterval   time.Duration `yaml:"sweep-interval" env:"SWEEP_INTERVAL" env-default:"1m"`
}

type Rules struct {
	Variant   string `yaml:"variant" env:"RULES_VARIANT" env-default:"standard"`
	BoardSize int    `yaml:"board-size" env:"BOARD_SIZE" env-default:"15"`
	WinLength int    `yaml:"win-length" env:"WIN_LENGTH" env-default:"5"`
}

type RateLimit struct {
	Limit  int           `yaml:"limit" env:"RATE_LIMIT" env-default:"10"`
	Window time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1s"`
}

type Heartbeat struct {
	PingInterval time.Duration `yaml:"ping-interval" env:"PING_INTERVAL" env-default:"30s"`
	PongTimeout  time.Duration `yaml:"pong-timeout" env:"PONG_TIMEOUT" env-default:"15s"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - loads config.yml when it exists, environment variables always win.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, statErr := os.Stat(path)

	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", statErr)
	}

	config.BasePath = NormalizeBasePath(config.BasePath)

	return config, nil
}

// NormalizeBasePath - leading slash, no trailing slash, "/" for empty input.
func NormalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")

	if path == "" {
		return "/"
	}

	return "/" + path
}

// WebsocketPath - websocket endpoint under the base path.
func (that *Config) WebsocketPath() string {
	if that.BasePath == "/" {
		return "/ws"
	}

	return that.BasePath + "/ws"
}

// IsDevelopment - anything but production relaxes the origin check.
func (that *Config) IsDevelopment() bool {
	return that.Env != EnvProduction
}

func (that *Config) TokenTTL() time.Duration {
	return time.Duration(that.TokenTTLMinutes) * time.Minute
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
