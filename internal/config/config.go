package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env if present).
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT" envDefault:"5432"`
	DBUser            string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD" envDefault:"password"`
	DBName            string        `env:"DB_NAME" envDefault:"tour_ops"`
	DBSSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBTimezone        string        `env:"DB_TIMEZONE" envDefault:"UTC"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"supersecret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	LogFile  string `env:"LOG_FILE" envDefault:"./logs/app.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"EUR"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}
