package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	WebDir           string
	LogLevel         string
	Database         Database
	Perco            Perco
	RedisAddr        string
	RateLimitBackend string
	RateLimitPerMin  int
	HealthCheckPerco bool
	OperatorKey      string
}

// Database describes the directory store connection.
type Database struct {
	Driver       string
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
	QueryTimeout time.Duration
}

// Perco describes the access-control server and its credentials.
type Perco struct {
	Server      string
	Port        int
	Login       string
	Password    string
	Timeout     time.Duration
	ReauthOn401 bool
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		WebDir:   getEnv("WEB_DIR", "web"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: Database{
			Driver:       getEnv("DB_DRIVER", "mysql"),
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         intEnv("DB_PORT", 3306),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         os.Getenv("DB_NAME"),
			MaxOpenConns: intEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: intEnv("DB_MAX_IDLE_CONNS", 5),
			QueryTimeout: durationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Perco: Perco{
			Server:      os.Getenv("PERCO_SERVER"),
			Port:        intEnv("PERCO_PORT", 80),
			Login:       os.Getenv("PERCO_LOGIN"),
			Password:    os.Getenv("PERCO_PASSWORD"),
			Timeout:     durationEnv("PERCO_TIMEOUT", 30*time.Second),
			ReauthOn401: boolEnv("PERCO_REAUTH_ON_401", false),
		},
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		HealthCheckPerco: boolEnv("HEALTH_CHECK_PERCO", false),
		OperatorKey:      os.Getenv("OPERATOR_JWT_SECRET"),
	}
}

// IsProduction reports whether the app runs with a production environment name.
func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

// DSN returns the data source name for the configured driver.
// DATABASE_URL wins over the individual DB_* parts.
func (d Database) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	switch d.Driver {
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.DBName = d.Name
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "pgx":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     addr,
			Path:     "/" + d.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}

// BaseURL returns the root URL of the Perco HTTP API.
func (p Perco) BaseURL() string {
	return "http://" + net.JoinHostPort(p.Server, strconv.Itoa(p.Port))
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
