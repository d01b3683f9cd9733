package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Cashfree  CashfreeConfig
	Reconcile ReconcileConfig
	URLs      URLConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string
}

func (c ServerConfig) IsProduction() bool { return c.Env == "production" }

type DatabaseConfig struct {
	Driver          string // mysql | postgres
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// CashfreeConfig holds PG credentials. Stage SANDBOX selects the sandbox host.
type CashfreeConfig struct {
	AppID         string
	Secret        string
	Stage         string
	APIVersion    string
	WebhookSecret string
}

func (c CashfreeConfig) Enabled() bool { return c.AppID != "" && c.Secret != "" }

type ReconcileConfig struct {
	Schedule      string
	After         time.Duration
	PaymentExpiry time.Duration
}

type URLConfig struct {
	FrontendURL string
	BackendURL  string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

const (
	defaultAccessSecret  = "change-me-in-production"
	defaultRefreshSecret = "change-me-refresh"
)

// Validate rejects settings that are unsafe to run in production.
func (c *Config) Validate() error {
	if !c.Server.IsProduction() {
		return nil
	}
	var errs []error
	if c.JWT.AccessSecret == "" || c.JWT.AccessSecret == defaultAccessSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set in production"))
	}
	if c.JWT.RefreshSecret == "" || c.JWT.RefreshSecret == defaultRefreshSecret {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must be set in production"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Cashfree.Enabled() && c.Cashfree.WebhookSecret == "" {
		errs = append(errs, errors.New("CF_WEBHOOK_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Load reads .env (if present) and environment variables on top of defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
			TrustedProxies: getList("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DB_DSN", "root:@tcp(localhost:3306)/feeportal?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", defaultAccessSecret),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", defaultRefreshSecret),
			AccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 30*time.Minute),
			RefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "feeportal"),
		},
		Cashfree: CashfreeConfig{
			AppID:         os.Getenv("CF_APP_ID"),
			Secret:        os.Getenv("CF_SECRET"),
			Stage:         getEnv("CF_STAGE", "SANDBOX"),
			APIVersion:    getEnv("CF_API_VERSION", "2022-01-01"),
			WebhookSecret: os.Getenv("CF_WEBHOOK_SECRET"),
		},
		Reconcile: ReconcileConfig{
			Schedule:      getEnv("RECONCILE_CRON", "@every 5m"),
			After:         getDuration("RECONCILE_AFTER", 15*time.Minute),
			PaymentExpiry: getDuration("PAYMENT_EXPIRY", 24*time.Hour),
		},
		URLs: URLConfig{
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
			BackendURL:  getEnv("BACKEND_URL", "http://localhost:8000"),
		},
		Mail: MailConfig{
			Host:     os.Getenv("MAIL_HOST"),
			Port:     getInt("MAIL_PORT", 587),
			Username: os.Getenv("MAIL_USER"),
			Password: os.Getenv("MAIL_PASS"),
			From:     getEnv("MAIL_FROM", "no-reply@feeportal.local"),
		},
		RateLimit: RateLimitConfig{
			Limit:  getInt("RATE_LIMIT", 100),
			Window: getDuration("RATE_WINDOW", 60*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
