package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Locator     LocatorConfig
	Bot         BotConfig
	Collections CollectionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	GatewayLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

// LocatorConfig points at the public assembly area page that is scraped for
// a session before the coordinate query.
type LocatorConfig struct {
	BaseURL   string
	PagePath  string
	Timeout   time.Duration
	UserAgent string
}

type BotConfig struct {
	ClosingDelay      time.Duration
	Timezone          string
	DispatcherWorkers int
	UserLockTTL       time.Duration
}

type CollectionConfig struct {
	ShelterNetwork string
	BloodDonation  string
	Pharmacies     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "bot.log"),
			GatewayLogFilePath: getEnv("GATEWAY_LOG_FILE_PATH", "locator_gateway.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Locator: LocatorConfig{
			BaseURL:   strings.TrimRight(getEnv("LOCATOR_BASE_URL", "https://www.turkiye.gov.tr"), "/"),
			PagePath:  getEnv("LOCATOR_PAGE_PATH", "/afet-ve-acil-durum-yonetimi-acil-toplanma-alani-sorgulama"),
			Timeout:   getEnvAsDuration("LOCATOR_TIMEOUT", 20*time.Second),
			UserAgent: getEnv("LOCATOR_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
		},
		Bot: BotConfig{
			ClosingDelay:      getEnvAsDuration("BOT_CLOSING_DELAY", 2*time.Second),
			Timezone:          getEnv("BOT_TIMEZONE", "Europe/Istanbul"),
			DispatcherWorkers: getEnvAsInt("BOT_DISPATCHER_WORKERS", 8),
			UserLockTTL:       getEnvAsDuration("BOT_USER_LOCK_TTL", 90*time.Second),
		},
		Collections: CollectionConfig{
			ShelterNetwork: getEnv("COLLECTION_SHELTER_NETWORK", "alanlar"),
			BloodDonation:  getEnv("COLLECTION_BLOOD_DONATION", "kanbagisi"),
			Pharmacies:     getEnv("COLLECTION_PHARMACIES", "eczaneler"),
		},
	}
}

// Validate rejects settings the bot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.App.Port) == "" {
		errs = append(errs, errors.New("APP_PORT must not be empty"))
	}
	if c.Locator.Timeout < time.Second || c.Locator.Timeout > 60*time.Second {
		errs = append(errs, fmt.Errorf("LOCATOR_TIMEOUT must be between 1s and 60s, got %s", c.Locator.Timeout))
	}
	if c.Bot.ClosingDelay < 0 {
		errs = append(errs, fmt.Errorf("BOT_CLOSING_DELAY must not be negative, got %s", c.Bot.ClosingDelay))
	}
	if c.Bot.DispatcherWorkers <= 0 {
		errs = append(errs, fmt.Errorf("BOT_DISPATCHER_WORKERS must be positive, got %d", c.Bot.DispatcherWorkers))
	}
	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("BOT_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
