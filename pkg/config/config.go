package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env      string
	Timezone string

	Discord   DiscordConfig
	Sheets    SheetsConfig
	SQLite    SQLiteConfig
	Items     ItemsConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Health    HealthConfig
	Log       LogConfig
}

type DiscordConfig struct {
	Token           string
	GuildID         string
	WebhookURL      string
	AuthorizedUsers []string
	PageDelay       time.Duration
}

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsPath string
	WorksheetName   string
}

type SQLiteConfig struct {
	Path string
}

// ItemsConfig governs the expiration lifecycle.
type ItemsConfig struct {
	RetentionDays int
	HorizonDays   int
	CheckInterval time.Duration
	PageSize      int
}

// RetryConfig configures the optional I/O retry wrapper. Disabled by default.
type RetryConfig struct {
	Enabled  bool
	Attempts int
	Delay    time.Duration
}

type RateLimitConfig struct {
	MaxCalls int
	Window   time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type HealthConfig struct {
	Enabled bool
	Port    int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Running without a .env file is fine; everything can come from the
	// environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Discord = DiscordConfig{
		Token:           v.GetString("DISCORD_TOKEN"),
		GuildID:         v.GetString("DISCORD_GUILD_ID"),
		WebhookURL:      v.GetString("DISCORD_WEBHOOK_URL"),
		AuthorizedUsers: splitAndTrim(v.GetString("AUTHORIZED_USERS")),
		PageDelay:       parseDuration(v.GetString("PAGE_DELAY"), time.Second),
	}

	cfg.Sheets = SheetsConfig{
		SpreadsheetID:   v.GetString("GOOGLE_SHEETS_ID"),
		CredentialsPath: v.GetString("GOOGLE_CREDENTIALS_PATH"),
		WorksheetName:   v.GetString("WORKSHEET_NAME"),
	}

	cfg.SQLite = SQLiteConfig{
		Path: v.GetString("SQLITE_PATH"),
	}

	cfg.Items = ItemsConfig{
		RetentionDays: v.GetInt("ITEM_EXPIRY_DAYS"),
		HorizonDays:   v.GetInt("NOTIFICATION_DAYS_BEFORE"),
		CheckInterval: parseDuration(v.GetString("EXPIRY_CHECK_INTERVAL"), 24*time.Hour),
		PageSize:      v.GetInt("ITEMS_PER_PAGE"),
	}

	cfg.Retry = RetryConfig{
		Enabled:  v.GetBool("RETRY_ENABLED"),
		Attempts: v.GetInt("RETRY_ATTEMPTS"),
		Delay:    parseDuration(v.GetString("RETRY_DELAY"), time.Second),
	}

	cfg.RateLimit = RateLimitConfig{
		MaxCalls: v.GetInt("RATE_LIMIT_MAX_CALLS"),
		Window:   parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Minute),
	}

	cfg.Cache = CacheConfig{
		TTL: parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Health = HealthConfig{
		Enabled: v.GetBool("ENABLE_HEALTH_SERVER"),
		Port:    v.GetInt("HEALTH_PORT"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

// Validate reports fatal configuration problems. Any error here terminates the
// process; everything past startup degrades instead of crashing.
func (c *Config) Validate() error {
	var problems []string

	if c.Discord.Token == "" {
		problems = append(problems, "DISCORD_TOKEN is required")
	}
	if c.Discord.WebhookURL == "" {
		problems = append(problems, "DISCORD_WEBHOOK_URL is required")
	}
	if len(c.Discord.AuthorizedUsers) == 0 {
		problems = append(problems, "AUTHORIZED_USERS must be set")
	}
	if c.Sheets.SpreadsheetID == "" && c.SQLite.Path == "" {
		problems = append(problems, "either GOOGLE_SHEETS_ID or SQLITE_PATH must be set")
	}
	if c.Items.RetentionDays <= 0 {
		problems = append(problems, "ITEM_EXPIRY_DAYS must be positive")
	}
	if c.Items.HorizonDays <= 0 {
		problems = append(problems, "NOTIFICATION_DAYS_BEFORE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, ", "))
	}

	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DISCORD_TOKEN", "")
	v.SetDefault("DISCORD_GUILD_ID", "")
	v.SetDefault("DISCORD_WEBHOOK_URL", "")
	v.SetDefault("AUTHORIZED_USERS", "")
	v.SetDefault("PAGE_DELAY", "1s")

	v.SetDefault("GOOGLE_SHEETS_ID", "")
	v.SetDefault("GOOGLE_CREDENTIALS_PATH", "./credentials/google_service_account.json")
	v.SetDefault("WORKSHEET_NAME", "Sheet1")

	v.SetDefault("SQLITE_PATH", "./data/storage.db")

	v.SetDefault("ITEM_EXPIRY_DAYS", 30)
	v.SetDefault("NOTIFICATION_DAYS_BEFORE", 7)
	v.SetDefault("EXPIRY_CHECK_INTERVAL", "24h")
	v.SetDefault("ITEMS_PER_PAGE", 10)

	v.SetDefault("RETRY_ENABLED", false)
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_DELAY", "1s")

	v.SetDefault("RATE_LIMIT_MAX_CALLS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ENABLE_HEALTH_SERVER", false)
	v.SetDefault("HEALTH_PORT", 8090)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
