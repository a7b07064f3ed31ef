package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfiguration_Defaults(t *testing.T) {
	var c Config
	applyDefaults(&c)

	require.Equal(t, "postgres", c.Database.Vendor)
	require.Equal(t, 15*time.Second, c.Transaction.MaxWait)
	require.Equal(t, 15*time.Second, c.Transaction.Timeout)
	require.Equal(t, 24*time.Hour, c.Lifecycle.TemporaryContentTTL)
	require.Equal(t, 5*time.Minute, c.Lifecycle.ApprovedGrace)
	require.Equal(t, 50, c.Outbox.BatchSize)
	require.NotEmpty(t, c.Cors.AllowOrigins)
}

func validConfig() Config {
	c := Config{App: App{Port: 8080, SecretKey: "0123456789abcdef"}}
	applyDefaults(&c)
	return c
}

func TestConfiguration_Validate(t *testing.T) {
	t.Run("defaults_are_valid", func(t *testing.T) {
		c := validConfig()
		require.NoError(t, c.Validate())
	})

	t.Run("unknown_vendor_rejected", func(t *testing.T) {
		c := validConfig()
		c.Database.Vendor = "oracle"
		require.Error(t, c.Validate())
	})

	t.Run("zero_timeout_rejected", func(t *testing.T) {
		c := validConfig()
		c.Transaction.Timeout = 0
		require.Error(t, c.Validate())
	})

	t.Run("empty_secret_key_rejected", func(t *testing.T) {
		c := validConfig()
		c.App.SecretKey = ""
		require.Error(t, c.Validate())
	})

	t.Run("short_secret_key_rejected", func(t *testing.T) {
		c := validConfig()
		c.App.SecretKey = "s3cret"
		require.Error(t, c.Validate())
	})
}

func TestInitApp_PortFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SECRET_KEY", "from-env")

	var c Config
	initApp(&c)

	require.Equal(t, 9090, c.App.Port)
	require.Equal(t, "from-env", c.App.SecretKey)
}

func TestInitDatabase_EnvOverrides(t *testing.T) {
	t.Setenv("DB_VENDOR", "mysql")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/content")
	t.Setenv("DB_HOST", "db.internal")

	c := Config{Database: Database{Psql: Db{Host: "configured"}}}
	initDatabase(&c)

	require.Equal(t, "mysql", c.Database.Vendor)
	require.Equal(t, "user:pass@tcp(localhost:3306)/content", c.Database.URL)
	require.Equal(t, "configured", c.Database.Psql.Host, "config file value wins over DB_HOST")
	require.Equal(t, "5432", c.Database.Psql.Port)
}

func TestLoadEnvFromFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CP_TEST_EXISTING=file\nCP_TEST_NEW=file\n"), 0o600))

	t.Setenv("CP_TEST_EXISTING", "env")
	t.Cleanup(func() { _ = os.Unsetenv("CP_TEST_NEW") })

	LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))

	require.Equal(t, "env", os.Getenv("CP_TEST_EXISTING"))
	require.Equal(t, "file", os.Getenv("CP_TEST_NEW"))
}

func TestRedisClient_Addr(t *testing.T) {
	require.Equal(t, "", RedisClient{}.Addr())
	require.Equal(t, "cache:6379", RedisClient{Host: "cache"}.Addr())
	require.Equal(t, "cache:6380", RedisClient{Host: "cache", Port: "6380"}.Addr())
}
