package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "SPOTTER"

// Config carries every runtime setting. Resolution order, lowest to
// highest precedence: built-in defaults, YAML settings file, environment
// variables, command-line flags.
type Config struct {
	Addr        string        `json:"addr"`
	DiagAddr    string        `json:"diagAddr"`
	DBPath      string        `json:"dbPath"`
	TokenDBPath string        `json:"tokenDbPath"`
	SecretKey   string        `json:"secretKey"`
	AccessTTL   time.Duration `json:"accessTtl"`
	RefreshTTL  time.Duration `json:"refreshTtl"`
	ORSBaseURL  string        `json:"orsBaseUrl"`
	ORSKey      string        `json:"orsKey"`
	StaticRoot  string        `json:"staticRoot"`
	AutoMigrate bool          `json:"autoMigrate"`
	Dev         bool          `json:"dev"`
}

// Default returns the built-in settings; the server answers on :8000
// unless told otherwise.
func Default() Config {
	return Config{
		Addr:        ":8000",
		DiagAddr:    ":9999",
		DBPath:      "spotter.db",
		TokenDBPath: "tokens.db",
		AccessTTL:   60 * time.Minute,
		RefreshTTL:  240 * time.Hour,
		ORSBaseURL:  "https://api.openrouteservice.org",
		AutoMigrate: true,
	}
}

// Load resolves the configuration: defaults, then the optional YAML file
// at path, then environment variables. Flag overrides are applied by the
// CLI after Load returns.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrapf(err, "read config %s", path)
		}

		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, errors.Wrapf(err, "parse config %s", path)
		}
	}

	c.Addr = GetEnv(EnvPrefix+"_ADDR", c.Addr)
	c.DiagAddr = GetEnv(EnvPrefix+"_DIAG_ADDR", c.DiagAddr)
	c.DBPath = GetEnv(EnvPrefix+"_DB", c.DBPath)
	c.TokenDBPath = GetEnv(EnvPrefix+"_TOKEN_DB", c.TokenDBPath)
	c.SecretKey = GetEnv(EnvPrefix+"_SECRET", c.SecretKey)
	c.ORSBaseURL = GetEnv(EnvPrefix+"_ORS_URL", c.ORSBaseURL)
	c.ORSKey = GetEnv(EnvPrefix+"_ORS_KEY", c.ORSKey)
	c.StaticRoot = GetEnv(EnvPrefix+"_STATIC_ROOT", c.StaticRoot)
	c.AutoMigrate = GetEnvBool(EnvPrefix+"_AUTO_MIGRATE", c.AutoMigrate)
	c.Dev = GetEnvBool(EnvPrefix+"_DEV", c.Dev)

	if m := GetEnvInt(EnvPrefix+"_ACCESS_TTL_MIN", 0); m > 0 {
		c.AccessTTL = time.Duration(m) * time.Minute
	}

	if h := GetEnvInt(EnvPrefix+"_REFRESH_TTL_HOURS", 0); h > 0 {
		c.RefreshTTL = time.Duration(h) * time.Hour
	}

	return c, nil
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}

	if !c.Dev && len(c.SecretKey) < 32 {
		return errors.New("secret key must be at least 32 bytes outside dev mode")
	}

	return nil
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return b
}

func GetEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return i
}
