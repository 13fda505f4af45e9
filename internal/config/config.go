package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	RateLimit  RateLimitConfig
	Client     ClientConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	HistoryLimit int // messages returned by /get_messages
}

// RateLimitConfig holds the per-IP request budget.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ClientConfig holds the settings of the CLI client commands.
type ClientConfig struct {
	BaseURL        string
	WSURL          string
	UserID         string
	Locale         language.Tag
	NotifyDuration time.Duration
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PLANNER_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PLANNER_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PLANNER_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PLANNER_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PLANNER_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	historyLimit, err := getEnvInt("PLANNER_HISTORY_LIMIT", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rps, err := getEnvFloat("PLANNER_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	burst, err := getEnvInt("PLANNER_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	notifyDuration, err := getEnvDuration("PLANNER_NOTIFY_DURATION", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	locale, err := language.Parse(getEnv("PLANNER_LOCALE", "en"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing PLANNER_LOCALE: %w", err)
	}

	selfHosted, err := getEnvBool("PLANNER_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("PLANNER_CORS_ORIGINS", []string{"http://localhost:5002"})

	// PORT is honoured for PaaS deployments that only hand out a port.
	addr := getEnv("PLANNER_SERVER_ADDR", ":5002")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PLANNER_SERVER_ADDR") == "" {
		addr = ":" + port
	}

	baseURL := getEnv("PLANNER_BASE_URL", "http://localhost:5002")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PLANNER_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("PLANNER_DB_USER", "planner"),
			Password: getEnv("PLANNER_DB_PASSWORD", ""),
			DBName:   getEnv("PLANNER_DB_NAME", "planner_dev"),
			SSLMode:  getEnv("PLANNER_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PLANNER_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PLANNER_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Server: ServerConfig{
			Addr:         addr,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			HistoryLimit: historyLimit,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
		Client: ClientConfig{
			BaseURL:        baseURL,
			WSURL:          getEnv("PLANNER_WS_URL", defaultWSURL(baseURL)),
			UserID:         getEnv("PLANNER_USER_ID", ""),
			Locale:         locale,
			NotifyDuration: notifyDuration,
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// defaultWSURL derives the realtime endpoint from the HTTP base URL.
func defaultWSURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(strings.TrimRight(baseURL, "/"), "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(strings.TrimRight(baseURL, "/"), "http://") + "/ws"
	default:
		return baseURL
	}
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// DB SSL mode warning for non-self-hosted deployments.
	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("PLANNER_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PLANNER_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PLANNER_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PLANNER_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PLANNER_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.HistoryLimit < 1 {
		return fmt.Errorf("PLANNER_HISTORY_LIMIT must be >= 1, got %d", c.Server.HistoryLimit)
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("PLANNER_RATE_LIMIT_RPS must be positive, got %g", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("PLANNER_RATE_LIMIT_BURST must be >= 1, got %d", c.RateLimit.Burst)
	}
	if c.Client.NotifyDuration <= 0 {
		return fmt.Errorf("PLANNER_NOTIFY_DURATION must be positive, got %s", c.Client.NotifyDuration)
	}
	if err := validateURL("PLANNER_BASE_URL", c.Client.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("PLANNER_WS_URL", c.Client.WSURL, "ws", "wss"); err != nil {
		return err
	}

	return nil
}

func validateURL(key, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return errors.New(key + " must be an absolute " + strings.Join(schemes, "/") + " URL, got " + strconv.Quote(raw))
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
