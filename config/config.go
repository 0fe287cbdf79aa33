package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT" envDefault:"8080"`
	GoEnv       string `env:"GO_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HS256 tokens issued by this service
	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:"orange-marketplace"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"orange-api"`

	// RS256 tokens issued by Auth0; takes precedence when the domain is set
	Auth0Domain   string `env:"AUTH0_DOMAIN"`
	Auth0Audience string `env:"AUTH0_AUDIENCE"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RedisURL    string   `env:"REDIS_URL"`

	AllowMessagesOnDeclined bool          `env:"ALLOW_MESSAGES_ON_DECLINED" envDefault:"true"`
	PollInterval            time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	MessageRateLimit        string        `env:"RATE_LIMIT_MESSAGES" envDefault:"60-M"`

	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSS3Bucket        string `env:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UploadDir          string `env:"UPLOAD_DIR" envDefault:"./uploads"`

	SeedEnabled bool `env:"SEED_ENABLED" envDefault:"true"`
}

var (
	current   *Config
	currentMu sync.RWMutex
)

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Environment-specific file wins over .env; neither is required
	// since hosted deployments set variables directly.
	envFile := fmt.Sprintf(".env.%s", goEnv)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			logrus.Debug("No .env file found, using system environment variables")
		}
	} else {
		logrus.WithField("file", envFile).Debug("Loaded configuration file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	SetConfig(cfg)
	return cfg, nil
}

func (c *Config) normalize() {
	origins := make([]string, 0, len(c.CORSOrigins))
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORSOrigins = origins
	c.Auth0Domain = strings.TrimSpace(c.Auth0Domain)
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" && c.Auth0Domain == "" {
		return fmt.Errorf("JWT_SECRET or AUTH0_DOMAIN is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesAuth0 reports whether tokens are verified against an Auth0 tenant.
func (c *Config) UsesAuth0() bool {
	return c.Auth0Domain != ""
}

// UsesS3 reports whether uploads go to S3 rather than local disk.
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// CanSeed reports whether the demo seed endpoint is mounted.
func (c *Config) CanSeed() bool {
	return c.SeedEnabled && !c.IsProduction()
}

// GetConfig returns the configuration set by Load or SetConfig
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig replaces the process-wide configuration (primarily for testing)
func SetConfig(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}
