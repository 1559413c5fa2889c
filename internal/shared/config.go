package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	StorageDriver string // mysql | memory
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	CacheTTL      time.Duration

	JWTSecret          string
	JWTTTL             time.Duration
	SuperAdminEmail    string
	SuperAdminPassword string

	APIBaseURL    string
	ClientRPS     int
	ReportWorkers int
	SessionFile   string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}
	c := Config{
		AppEnv:             env("APP_ENV", "prod"),
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		StorageDriver:      env("STORAGE_DRIVER", "mysql"),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/pine?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPass:          env("REDIS_PASSWORD", ""),
		RedisDB:            atoi("REDIS_DB", 0),
		CacheTTL:           time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             time.Duration(atoi("JWT_TTL_MINUTES", 24*60)) * time.Minute,
		SuperAdminEmail:    os.Getenv("SUPERADMIN_EMAIL"),
		SuperAdminPassword: os.Getenv("SUPERADMIN_PASSWORD"),
		APIBaseURL:         env("API_BASE_URL", "http://localhost:8080"),
		ClientRPS:          atoi("CLIENT_RPS", 5),
		ReportWorkers:      atoi("REPORT_WORKERS", 4),
		SessionFile:        env("SESSION_FILE", defaultSessionFile()),
	}
	if c.JWTSecret == "" && c.AppEnv == "dev" {
		log.Warn().Msg("JWT_SECRET is empty, using the development secret")
		c.JWTSecret = devJWTSecret
	}
	return c
}

// ValidateServer checks the settings the API server cannot start without.
func (c Config) ValidateServer() error {
	switch c.StorageDriver {
	case "mysql":
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required with STORAGE_DRIVER=mysql")
		}
	case "memory":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be mysql or memory, got %q", c.StorageDriver)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if c.SuperAdminEmail != "" && len(c.SuperAdminPassword) < 8 {
		return fmt.Errorf("SUPERADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".travelctl.json"
	}
	return filepath.Join(dir, "travelctl", "session.json")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
