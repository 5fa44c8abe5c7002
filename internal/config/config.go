package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Mail    MailConfig
	Cron    CronConfig
}

type AppConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

type MongoConfig struct {
	URI string
	// DatabasePrefix is prepended to the tenant identifier to form the
	// per-tenant database name.
	DatabasePrefix string
	// StockDatabase is the single shared database holding stock items and
	// movements for every tenant.
	StockDatabase string
}

type RedisConfig struct {
	Addr     string // empty disables the Redis role cache
	Password string
	DB       int
}

type SessionConfig struct {
	Secret     string
	SessionTTL time.Duration
	RoleTTL    time.Duration
	CookieName string
}

type MailConfig struct {
	APIURL string
	APIKey string
	From   string
}

type CronConfig struct {
	Secret string
}

// Load reads configuration from the process environment. MONGO_URI,
// JWT_SECRET, MAIL_API_KEY and CRON_SECRET are required; everything else has
// a default.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("API_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MONGO_DB_PREFIX", "clinic_")
	viper.SetDefault("STOCK_DATABASE", "stock")
	viper.SetDefault("SESSION_TTL", "168h")
	viper.SetDefault("ROLE_TTL", "60s")
	viper.SetDefault("SESSION_COOKIE", "clinic_session")
	viper.SetDefault("MAIL_API_URL", "https://textbelt.com/text")
	viper.SetDefault("MAIL_FROM", "no-reply@clinic.local")

	for _, key := range []string{"MONGO_URI", "JWT_SECRET", "MAIL_API_KEY", "CRON_SECRET"} {
		if viper.GetString(key) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", key)
		}
	}

	sessionTTL, err := time.ParseDuration(viper.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	roleTTL, err := time.ParseDuration(viper.GetString("ROLE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROLE_TTL: %w", err)
	}

	return &Config{
		App: AppConfig{
			Port:        viper.GetString("API_PORT"),
			Env:         viper.GetString("APP_ENV"),
			CORSOrigins: viper.GetStringSlice("CORS_ORIGINS"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("MONGO_URI"),
			DatabasePrefix: viper.GetString("MONGO_DB_PREFIX"),
			StockDatabase:  viper.GetString("STOCK_DATABASE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret:     viper.GetString("JWT_SECRET"),
			SessionTTL: sessionTTL,
			RoleTTL:    roleTTL,
			CookieName: viper.GetString("SESSION_COOKIE"),
		},
		Mail: MailConfig{
			APIURL: viper.GetString("MAIL_API_URL"),
			APIKey: viper.GetString("MAIL_API_KEY"),
			From:   viper.GetString("MAIL_FROM"),
		},
		Cron: CronConfig{
			Secret: viper.GetString("CRON_SECRET"),
		},
	}, nil
}
