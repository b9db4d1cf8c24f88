package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spotterai/spotter/internal/config"
)

func TestDefaults(t *testing.T) {
	r := require.New(t)

	c := config.Default()
	r.Equal(":8000", c.Addr)
	r.Equal(":9999", c.DiagAddr)
	r.Equal(60*time.Minute, c.AccessTTL)
	r.Equal(240*time.Hour, c.RefreshTTL)
	r.True(c.AutoMigrate)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	r.NoError(os.WriteFile(path, []byte(`
addr: ":8080"
dbPath: from-yaml.db
orsKey: yaml-key
`), 0o644))

	// Env wins over the settings file.
	t.Setenv("SPOTTER_DB", "from-env.db")
	t.Setenv("SPOTTER_SECRET", "s3cret")
	t.Setenv("SPOTTER_ACCESS_TTL_MIN", "15")
	t.Setenv("SPOTTER_AUTO_MIGRATE", "false")

	c, err := config.Load(path)
	r.NoError(err)
	r.Equal(":8080", c.Addr)
	r.Equal("from-env.db", c.DBPath)
	r.Equal("yaml-key", c.ORSKey)
	r.Equal("s3cret", c.SecretKey)
	r.Equal(15*time.Minute, c.AccessTTL)
	r.False(c.AutoMigrate)
}

func TestLoadMissingFile(t *testing.T) {
	r := require.New(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	r.Error(err)
}

func TestValidate(t *testing.T) {
	r := require.New(t)

	c := config.Default()
	r.Error(c.Validate(), "short secret outside dev mode")

	c.Dev = true
	r.NoError(c.Validate())

	c.Dev = false
	c.SecretKey = "0123456789abcdef0123456789abcdef"
	r.NoError(c.Validate())

	c.Addr = ""
	r.Error(c.Validate())
}

func TestGetEnvHelpers(t *testing.T) {
	r := require.New(t)

	t.Setenv("SPOTTER_TEST_STR", "value")
	t.Setenv("SPOTTER_TEST_BOOL", "true")
	t.Setenv("SPOTTER_TEST_INT", "42")
	t.Setenv("SPOTTER_TEST_BAD_INT", "forty-two")

	r.Equal("value", config.GetEnv("SPOTTER_TEST_STR", "fallback"))
	r.Equal("fallback", config.GetEnv("SPOTTER_TEST_MISSING", "fallback"))
	r.True(config.GetEnvBool("SPOTTER_TEST_BOOL", false))
	r.False(config.GetEnvBool("SPOTTER_TEST_MISSING", false))
	r.Equal(42, config.GetEnvInt("SPOTTER_TEST_INT", 7))
	r.Equal(7, config.GetEnvInt("SPOTTER_TEST_BAD_INT", 7))
}
