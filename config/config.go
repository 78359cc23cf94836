package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const devJWTSecret = "dev-secret-change-me"

// Config is read from the environment, optionally seeded by a .env file.
type Config struct {
	Port string `env:"PORT,default=5000"`

	StoreDriver     string `env:"STORE_DRIVER,default=mongo"`
	MongoURI        string `env:"MONGODB_URI,default=mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGODB_DATABASE,default=travel-app"`
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB,default=0"`
	UploadDir       string `env:"UPLOAD_DIR,default=uploads"`
	ExpirySweepSpec string `env:"EXPIRY_SWEEP_SPEC,default=@hourly"`

	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=24h"`
	ReceiptSecret  string        `env:"RECEIPT_SECRET"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	CORSOrigins    []string `env:"CORS_ORIGINS,default=*"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST,default=10"`
}

// Load reads .env (if present) and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not read .env")
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" {
		log.Warn("JWT_SECRET not set; using development secret")
		c.JWTSecret = devJWTSecret
	}
	if c.ReceiptSecret == "" {
		c.ReceiptSecret = c.JWTSecret
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.Port != "" && c.Port[0] != ':' {
		c.Port = ":" + c.Port
	}
	return nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level; using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
