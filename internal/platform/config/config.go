package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/turf45/courtbook/internal/core/domain"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DB
	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" default:"courtbook"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`

	// Redis is optional; without it job exclusion is per instance only.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// RabbitMQ is optional; without it events are dropped after logging.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"PAYMENT_QUEUE" default:"courtbook.payment.q"`

	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`

	VenueOpen          string `envconfig:"VENUE_OPEN_TIME" default:"00:00:00"`
	VenueClose         string `envconfig:"VENUE_CLOSE_TIME" default:"24:00:00"`
	DefaultSlotMinutes int    `envconfig:"DEFAULT_SLOT_MINUTES" default:"60"`
	StrictPrecheck     bool   `envconfig:"STRICT_PRECHECK" default:"true"`

	DedupSchedule     string        `envconfig:"DEDUP_SCHEDULE" default:"@every 5m"`
	ReconcileSchedule string        `envconfig:"RECONCILE_SCHEDULE" default:"@every 1m"`
	JobBudget         time.Duration `envconfig:"JOB_BUDGET" default:"60s"`
	PaymentExpiry     time.Duration `envconfig:"PAYMENT_EXPIRY" default:"30m"`

	RateLimitRPS   float64  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int      `envconfig:"RATE_LIMIT_BURST" default:"20"`
	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}

	if _, err := c.OperatingHours(); err != nil {
		return Config{}, err
	}
	if c.DefaultSlotMinutes <= 0 {
		return Config{}, &domain.ConfigurationError{Message: "DEFAULT_SLOT_MINUTES must be positive"}
	}
	return c, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c Config) OperatingHours() (domain.OperatingHours, error) {
	open, err := domain.ParseTimeOfDay(c.VenueOpen)
	if err != nil {
		return domain.OperatingHours{}, &domain.ConfigurationError{Message: "VENUE_OPEN_TIME: " + err.Error()}
	}
	closing, err := domain.ParseTimeOfDay(c.VenueClose)
	if err != nil {
		return domain.OperatingHours{}, &domain.ConfigurationError{Message: "VENUE_CLOSE_TIME: " + err.Error()}
	}

	hours := domain.OperatingHours{Open: open, Close: closing}
	return hours, hours.Validate()
}
