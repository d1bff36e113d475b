// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Adzuna    AdzunaConfig    `mapstructure:"adzuna"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AdzunaConfig holds settings for the external job-search provider.
type AdzunaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	AppID   string `mapstructure:"app_id"`
	AppKey  string `mapstructure:"app_key"`
	Country string `mapstructure:"country"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// TelegramConfig holds settings for the messaging provider.
type TelegramConfig struct {
	APIURL       string `mapstructure:"api_url"`
	BotToken     string `mapstructure:"bot_token"`
	BotUsername  string `mapstructure:"bot_username"`
	DashboardURL string `mapstructure:"dashboard_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// SchedulerConfig holds settings for the alert scheduler triggers.
type SchedulerConfig struct {
	DailySpec   string `mapstructure:"daily_spec"`
	WeeklySpec  string `mapstructure:"weekly_spec"`
	Timezone    string `mapstructure:"timezone"`
	Concurrency int    `mapstructure:"concurrency"`
	TopJobs     int    `mapstructure:"top_jobs"`
	LockTTL     int    `mapstructure:"lock_ttl"`   // seconds
	DedupTTL    int    `mapstructure:"dedup_ttl"`  // seconds
}

// RecommendConfig holds settings for the interactive recommendation flow.
type RecommendConfig struct {
	MaxDaysOld int `mapstructure:"max_days_old"`
	MaxResults int `mapstructure:"max_results"`
	TopJobs    int `mapstructure:"top_jobs"`
	StaleAfter int `mapstructure:"stale_after"` // days, for cleanup
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
