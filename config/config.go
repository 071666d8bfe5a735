package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const DefaultDataFile = "bookings_final_state.csv"

type Config struct {
	DataFile    string
	StoreDriver string // csv or mysql
	Port        string
	CorsOrigins []string
	LogLevel    string
	LogFormat   string
	GinMode     string
}

// LoadEnv reads .env files when present. Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DataFile:    envOrDefault("DATA_FILE", DefaultDataFile),
		StoreDriver: strings.ToLower(envOrDefault("STORE_DRIVER", "csv")),
		Port:        envOrDefault("PORT", "8080"),
		CorsOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		LogLevel:    strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(envOrDefault("LOG_FORMAT", "console")),
		GinMode:     envOrDefault("GIN_MODE", "release"),
	}

	switch cfg.StoreDriver {
	case "csv", "mysql":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want csv or mysql)", cfg.StoreDriver)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	c := mysql.NewConfig()
	c.User = u.User.Username()
	c.Passwd, _ = u.User.Password()
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(u.Hostname(), port)
	c.DBName = dbName
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range u.Query() {
		if len(v) > 0 {
			c.Params[k] = v[0]
		}
	}
	return c.FormatDSN(), nil
}

// ResolveMySQLDSN prefers MYSQL_URL or DATABASE_URL and falls back to the DB_* variables.
func ResolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		if _, err := mysql.ParseDSN(raw); err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return raw, nil
	}

	c := mysql.NewConfig()
	c.User = envOrDefault("DB_USER", "root")
	c.Passwd = os.Getenv("DB_PASS")
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(envOrDefault("DB_HOST", "127.0.0.1"), envOrDefault("DB_PORT", "3306"))
	c.DBName = envOrDefault("DB_NAME", "classroom_booking")
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN(), nil
}
