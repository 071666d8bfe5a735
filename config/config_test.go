package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATA_FILE", "STORE_DRIVER", "PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "GIN_MODE",
	"MYSQL_URL", "DATABASE_URL", "DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, "csv", cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CorsOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_FILE", "/tmp/x/rooms.csv")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x/rooms.csv", cfg.DataFile)
	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnv_File(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even to ""
	require.NoError(t, os.Unsetenv("DATA_FILE"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_FILE=from-dotenv.csv\n"), 0o644))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.DataFile)
}

func TestResolveMySQLDSN_FromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "booker")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_NAME", "rooms")

	dsn, err := ResolveMySQLDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "booker", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "db.local:3306", parsed.Addr)
	assert.Equal(t, "rooms", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestResolveMySQLDSN_FromURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_URL", "mysql://u:p@example.com:3307/bookings")

	dsn, err := ResolveMySQLDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "u", parsed.User)
	assert.Equal(t, "example.com:3307", parsed.Addr)
	assert.Equal(t, "bookings", parsed.DBName)
}

func TestResolveMySQLDSN_URLWithoutDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "mysql://u:p@example.com")

	_, err := ResolveMySQLDSN()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}
