package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
)

type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Covid      CovidConfig      `mapstructure:"covid"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Resources  ResourcesConfig  `mapstructure:"resources"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	// TokenFile is read when Token is empty: its first line is the token.
	// Lets the secret live outside the config file.
	TokenFile     string        `mapstructure:"token_file"`
	Webhook       WebhookConfig `mapstructure:"webhook"`
	UpdateTimeout int           `mapstructure:"update_timeout"`
}

type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Port    int    `mapstructure:"port"`
}

type CovidConfig struct {
	// BaseURL and USBaseURL are the daily-report directories, templated with
	// an MM-DD-YYYY date plus ".csv".
	BaseURL   string `mapstructure:"base_url"`
	USBaseURL string `mapstructure:"us_base_url"`
	// DataDir holds the local snapshots; US data goes to DataDir/us_data.
	DataDir          string        `mapstructure:"data_dir"`
	Attempts         int           `mapstructure:"attempts"`
	FreshnessWindow  time.Duration `mapstructure:"freshness_window"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	FallbackLocation string        `mapstructure:"fallback_location"`
}

type RegistryConfig struct {
	Type  string      `mapstructure:"type"`
	Dir   string      `mapstructure:"dir"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	// MessagesPerSecond bounds all outbound traffic; GroupPerMinute
	// additionally bounds each group chat.
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	GroupPerMinute    float64 `mapstructure:"group_per_minute"`
}

type ResourcesConfig struct {
	TextListDir string `mapstructure:"text_list_dir"`
	MsgTextDir  string `mapstructure:"msg_text_dir"`
	ChatDataDir string `mapstructure:"chat_data_dir"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
	Dir             string   `mapstructure:"dir"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.BindEnv("bot.token", "BOT_TOKEN")
	viper.BindEnv("registry.type", "REGISTRY_TYPE")
	viper.BindEnv("registry.redis.addr", "REDIS_ADDR")
	viper.BindEnv("registry.redis.password", "REDIS_PASSWORD")
	viper.BindEnv("registry.redis.db", "REDIS_DB")
	viper.BindEnv("bot.webhook.url", "WEBHOOK_URL")
	viper.BindEnv("bot.webhook.port", "PORT")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if config.Bot.Token == "" && config.Bot.TokenFile != "" {
		token, err := wordset.ReadFirstLine(config.Bot.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		config.Bot.Token = token
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Covid.Attempts == 0 {
		cfg.Covid.Attempts = 5
	}
	if cfg.Covid.FreshnessWindow == 0 {
		cfg.Covid.FreshnessWindow = 3 * time.Hour
	}
	if cfg.Covid.RequestTimeout == 0 {
		cfg.Covid.RequestTimeout = 15 * time.Second
	}
	if cfg.Covid.FallbackLocation == "" {
		cfg.Covid.FallbackLocation = "Turkey"
	}
	if cfg.RateLimit.MessagesPerSecond == 0 {
		cfg.RateLimit.MessagesPerSecond = 29
	}
	if cfg.RateLimit.GroupPerMinute == 0 {
		cfg.RateLimit.GroupPerMinute = 19
	}
	if cfg.Registry.Type == "" {
		cfg.Registry.Type = "file"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Bot.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if cfg.Covid.BaseURL == "" || cfg.Covid.USBaseURL == "" {
		return fmt.Errorf("covid data source URLs are required")
	}
	if cfg.Registry.Type == "redis" && cfg.Registry.Redis.Addr == "" {
		return fmt.Errorf("redis registry requires an address")
	}
	return nil
}
