package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // chat-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Auth struct {
	// HS256 secret shared with the session issuer; token validation only,
	// issuance lives elsewhere.
	JWTSecret string `yaml:"jwtSecret"`
}

type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

type Enrichment struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`

	BannedWords []string `yaml:"bannedWords"`
	BlockToxic  bool     `yaml:"blockToxic"`
}

type Notify struct {
	// When true, a user mentioned in a message does not also get the plain
	// "new message" email for the same message.
	CoalesceOverlap bool `yaml:"coalesceOverlap"`
	Workers         int  `yaml:"workers"`
	QueueSize       int  `yaml:"queueSize"`
}

type WS struct {
	PingEvery      string `yaml:"pingEvery"`      // e.g. "15s"
	ReconcileEvery string `yaml:"reconcileEvery"` // e.g. "1m"
}

type Config struct {
	HTTP       HTTP       `yaml:"http"`
	Logging    Logging    `yaml:"logging"`
	Postgres   Postgres   `yaml:"postgres"`
	Auth       Auth       `yaml:"auth"`
	SMTP       SMTP       `yaml:"smtp"`
	Enrichment Enrichment `yaml:"enrichment"`
	Notify     Notify     `yaml:"notify"`
	WS         WS         `yaml:"ws"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	return LoadConfigFile(path)
}

func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "chat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.Notify.Workers <= 0 {
		c.Notify.Workers = 2
	}
	if c.Notify.QueueSize <= 0 {
		c.Notify.QueueSize = 256
	}
	return nil
}

func (c *Config) PingEvery() time.Duration {
	return parseDurationOr(15*time.Second, c.WS.PingEvery)
}

func (c *Config) ReconcileEvery() time.Duration {
	return parseDurationOr(time.Minute, c.WS.ReconcileEvery)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
