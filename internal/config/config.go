package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config хранит все параметры приложения
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
	Delivery DeliveryConfig `yaml:"delivery"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"use_tls"`
	Prefetch int    `yaml:"prefetch"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"bot_token"`
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	APIEndpoint   string `yaml:"api_endpoint"`
	DefaultChatID int64  `yaml:"default_chat_id"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SessionConfig struct {
	MaxAge     time.Duration `yaml:"max_age"`
	AuthMaxAge time.Duration `yaml:"auth_max_age"`
}

type DeliveryConfig struct {
	SimulatedLatency time.Duration   `yaml:"simulated_latency"`
	RequestTimeout   time.Duration   `yaml:"request_timeout"`
	Companies        []CompanyConfig `yaml:"companies"`
}

// CompanyConfig описывает подключение к одной платформе доставки.
// Пустой BaseURL означает режим симуляции.
type CompanyConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url"`
	AuthType string `yaml:"auth_type"` // oauth | api_key | basic
	Token    string `yaml:"token"`
	APIKey   string `yaml:"api_key"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// oauth: client credentials flow when TokenURL is set, static Token otherwise
	TokenURL     string   `yaml:"token_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

var authTypes = map[string]bool{"": true, "oauth": true, "api_key": true, "basic": true}

type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Reason
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQConfig{Port: 5672, VHost: "/", Prefetch: 10},
		HTTP:     HTTPConfig{Port: 3000, RequestTimeout: 30 * time.Second},
		Log:      LogConfig{Level: "info"},
		Session:  SessionConfig{MaxAge: 24 * time.Hour, AuthMaxAge: 24 * time.Hour},
		Delivery: DeliveryConfig{SimulatedLatency: 300 * time.Millisecond, RequestTimeout: 10 * time.Second},
	}
}

// Load reads the YAML file, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct{ field, value string }{
		{"database.host", c.Database.Host},
		{"database.user", c.Database.User},
		{"database.database", c.Database.Database},
		{"rabbitmq.host", c.RabbitMQ.Host},
		{"rabbitmq.user", c.RabbitMQ.User},
		{"redis.url", c.Redis.URL},
		{"telegram.bot_token", c.Telegram.BotToken},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return ConfigError{Field: r.field, Reason: "must be set"}
		}
	}
	// секрет обязателен, если бот получает апдейты через вебхук
	if c.Telegram.WebhookURL != "" && strings.TrimSpace(c.Telegram.WebhookSecret) == "" {
		return ConfigError{Field: "telegram.webhook_secret", Reason: "must be set when telegram.webhook_url is set"}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return ConfigError{Field: "http.port", Reason: "must be between 1 and 65535"}
	}
	seen := map[string]bool{}
	for i, cc := range c.Delivery.Companies {
		field := fmt.Sprintf("delivery.companies[%d]", i)
		if cc.ID == "" {
			return ConfigError{Field: field + ".id", Reason: "must be set"}
		}
		if seen[cc.ID] {
			return ConfigError{Field: field + ".id", Reason: "duplicate company " + cc.ID}
		}
		seen[cc.ID] = true
		if !authTypes[cc.AuthType] {
			return ConfigError{Field: field + ".auth_type", Reason: "unknown auth type " + cc.AuthType}
		}
	}
	return nil
}

// DSN for pgxpool.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

func applyEnv(c *Config) {
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.RabbitMQ.Host = getEnv("RABBITMQ_HOST", c.RabbitMQ.Host)
	c.RabbitMQ.Port = getEnvAsInt("RABBITMQ_PORT", c.RabbitMQ.Port)
	c.RabbitMQ.User = getEnv("RABBITMQ_USER", c.RabbitMQ.User)
	c.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", c.RabbitMQ.Password)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.WebhookURL = strings.TrimSuffix(getEnv("TELEGRAM_WEBHOOK_URL", c.Telegram.WebhookURL), "/")
	c.Telegram.WebhookSecret = getEnv("TELEGRAM_WEBHOOK_SECRET", c.Telegram.WebhookSecret)
	if v := getEnv("TELEGRAM_DEFAULT_CHAT_ID", ""); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.DefaultChatID = id
		}
	}
	c.HTTP.Port = getEnvAsInt("HTTP_PORT", c.HTTP.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
