package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the main struct that holds all configuration for the framework.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Run       RunConfig       `mapstructure:"run"`
	Notifiers NotifiersConfig `mapstructure:"notifiers"`
}

// LoggerConfig holds logging-specific settings.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPConfig holds tracker HTTP server settings.
type HTTPConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// PostgresConfig holds all settings for the PostgreSQL connection.
type PostgresConfig struct {
	DSN  string     `mapstructure:"dsn"`
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig defines the connection pool settings for the database.
type PoolConfig struct {
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds all settings for the Redis connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TrackingConfig tells the runner where to record runs. When disabled the
// runner uses a no-op tracking client.
type TrackingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// RunConfig holds settings of the training run itself.
type RunConfig struct {
	Name string `mapstructure:"name"`
}

// NotifiersConfig holds configurations for all notification channels.
type NotifiersConfig struct {
	// Mode can be "production" or "log_only".
	// Outside "production" mode, all channels are replaced by the log service.
	Mode     string         `mapstructure:"mode"`
	Discord  WebhookConfig  `mapstructure:"discord"`
	Slack    WebhookConfig  `mapstructure:"slack"`
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Desktop  DesktopConfig  `mapstructure:"desktop"`
}

// WebhookConfig holds settings for a webhook-based channel.
type WebhookConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// TelegramConfig holds settings for the Telegram channel.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// DesktopConfig toggles local desktop notifications.
type DesktopConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// NewConfig parses the default YAML file and environment variables.
func NewConfig() (*Config, error) {
	return NewConfigFromFile("configs/config.yaml")
}

// NewConfigFromFile parses the given YAML file and environment variables to
// return a configuration struct. Environment variables take precedence over
// file values (LOGGER_LEVEL overrides logger.level, and so on).
func NewConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	v.SetDefault("logger.level", "info")
	v.SetDefault("http.port", ":8080")
	v.SetDefault("http.gin_mode", "release")
	v.SetDefault("tracking.enabled", false)
	v.SetDefault("notifiers.mode", "log_only")
	v.SetDefault("notifiers.email.port", 587)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
