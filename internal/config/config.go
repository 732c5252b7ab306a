package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Credentials is the process-wide secret material handed to the auth layer.
type Credentials struct {
	SigningKey      []byte
	TokenExpiryDays int
	HashCost        int
}

// TokenTTL is the lifetime of both the signed token and its cookie.
func (c Credentials) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpiryDays) * 24 * time.Hour
}

type SMTP struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT" envDefault:"587"`
	Username  string `env:"USERNAME"`
	Password  string `env:"PASSWORD"`
	FromName  string `env:"FROM_NAME" envDefault:"Portfolio"`
	FromEmail string `env:"FROM_EMAIL"`
}

func (s SMTP) Enabled() bool { return s.Host != "" && s.FromEmail != "" }

type Media struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
}

func (m Media) Enabled() bool { return m.Bucket != "" }

type Config struct {
	Env              string `env:"APP_ENV" envDefault:"dev"`
	Addr             string `env:"APP_ADDR" envDefault:"127.0.0.1:8080"`
	PublicURLRaw     string `env:"APP_PUBLIC_URL"`
	DBDSN            string `env:"APP_DB_DSN"`
	LogLevel         string `env:"APP_LOG_LEVEL"`
	JWTSecret        string `env:"APP_JWT_SECRET"`
	TokenExpiryDays  int    `env:"APP_TOKEN_EXPIRY_DAYS" envDefault:"7"`
	HashCost         int    `env:"APP_HASH_COST" envDefault:"10"`
	DashboardURL     string `env:"APP_DASHBOARD_URL"`
	PortfolioOwnerID string `env:"APP_PORTFOLIO_OWNER_ID"`
	CORSOriginsRaw   string `env:"APP_CORS_ORIGINS"`
	MetricsEnabled   bool   `env:"APP_METRICS_ENABLED" envDefault:"true"`
	SMTP             SMTP   `envPrefix:"APP_SMTP_"`
	Media            Media  `envPrefix:"APP_MEDIA_"`

	PublicURL   *url.URL
	CORSOrigins []string
}

const defaultEnvFile = ".env"

// Load reads the optional dotenv file named by APP_ENV_FILE and then parses
// the process environment.
func Load() (Config, error) {
	path := os.Getenv("APP_ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}
	if err := loadDotEnvFile(path, os.Setenv, os.Getenv); err != nil {
		return Config{}, err
	}
	return LoadFromEnv(env.ToMap(os.Environ()))
}

func LoadFromEnv(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.PublicURLRaw != "" {
		parsed, err := url.Parse(cfg.PublicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	if cfg.TokenExpiryDays <= 0 {
		return Config{}, errors.New("APP_TOKEN_EXPIRY_DAYS: must be > 0")
	}
	if cfg.HashCost < 4 || cfg.HashCost > 31 {
		return Config{}, errors.New("APP_HASH_COST: must be between 4 and 31")
	}

	cfg.CORSOrigins = parseCSV(cfg.CORSOriginsRaw)
	cfg.DashboardURL = strings.TrimRight(strings.TrimSpace(cfg.DashboardURL), "/")

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.JWTSecret) < 32 {
			return Config{}, errors.New("APP_JWT_SECRET: must be at least 32 bytes in prod")
		}
	}
	if cfg.JWTSecret == "" {
		// dev/test only: tokens do not survive a restart.
		cfg.JWTSecret = "dev-insecure-signing-key-change-me"
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

func (c Config) Credentials() Credentials {
	return Credentials{
		SigningKey:      []byte(c.JWTSecret),
		TokenExpiryDays: c.TokenExpiryDays,
		HashCost:        c.HashCost,
	}
}

// parseCSV keeps origin case; scheme and host are compared as sent by browsers.
func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
