package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Backend   BackendConfig   `yaml:"backend"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Client    ClientConfig    `yaml:"client"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// BackendConfig points at the insurance API the gateway proxies to.
type BackendConfig struct {
	BaseURL         string `yaml:"base_url"`
	RequestTimeoutS int    `yaml:"request_timeout_s"`
	UploadTimeoutS  int    `yaml:"upload_timeout_s"`
	ChatAskTimeoutS int    `yaml:"chat_ask_timeout_s"`
}

type AuthConfig struct {
	CookieName    string `yaml:"cookie_name"`
	CookieMaxAgeS int    `yaml:"cookie_max_age_s"`
}

type RateLimitConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	QPS       int    `yaml:"qps"`
}

// ClientConfig is read by the terminal client only.
type ClientConfig struct {
	GatewayURL     string `yaml:"gateway_url"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

func Load(configFile string) *Config {
	c := &Config{
		Env:       "development",
		Server:    ServerConfig{Port: 3000, AllowOrigins: []string{"*"}},
		Log:       LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Backend:   BackendConfig{BaseURL: "http://API:8000", RequestTimeoutS: 30, UploadTimeoutS: 300, ChatAskTimeoutS: 30},
		Auth:      AuthConfig{CookieName: "access_token", CookieMaxAgeS: 60 * 60},
		RateLimit: RateLimitConfig{QPS: 20},
		Client:    ClientConfig{GatewayURL: "http://localhost:3000", PollIntervalMS: 300},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/insur-assist/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	// .env never wins over variables already present in the process environment.
	_ = godotenv.Load()

	envOverride(&c.Env, "APP_ENV")
	envOverride(&c.Backend.BaseURL, "BACKEND_URL")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.RateLimit.RedisAddr, "REDIS_ADDR")
	envOverride(&c.RateLimit.Password, "REDIS_PASSWORD")
	envOverride(&c.Client.GatewayURL, "GATEWAY_URL")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.RateLimit.QPS, "RATE_LIMIT_QPS")
	envOverrideInt(&c.Client.PollIntervalMS, "POLL_INTERVAL_MS")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) PollInterval() time.Duration {
	if c.Client.PollIntervalMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Client.PollIntervalMS) * time.Millisecond
}

func (b BackendConfig) RequestTimeout() time.Duration { return seconds(b.RequestTimeoutS, 30) }
func (b BackendConfig) UploadTimeout() time.Duration  { return seconds(b.UploadTimeoutS, 300) }
func (b BackendConfig) ChatAskTimeout() time.Duration { return seconds(b.ChatAskTimeoutS, 30) }

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
