package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWYwMTIzNDU2Nzg5YWJjZGVmMDEyMzQ1Njc4OWFiY2RlZg=="

func TestParseDefaults(t *testing.T) {
	t.Setenv("GOACCOUNT_JWT_SECRET", testSecret)
	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "memory")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RenewalTTL)
	assert.True(t, cfg.CookieSecure)

	engine := cfg.Engine()
	require.NoError(t, engine.Validate())
	assert.Equal(t, 1800*time.Second, engine.JWT.AccessTTL)
	assert.Equal(t, http.SameSiteLaxMode, engine.Cookie.SameSite)
	assert.Equal(t, "refreshToken", engine.Cookie.Name)
}

func TestTTLOverridesAreValidatedByEngine(t *testing.T) {
	t.Setenv("GOACCOUNT_JWT_SECRET", testSecret)
	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "memory")

	t.Setenv("GOACCOUNT_ACCESS_TTL", "10m")
	t.Setenv("GOACCOUNT_RENEWAL_TTL", "24h")
	cfg, err := Parse()
	require.NoError(t, err)
	engine := cfg.Engine()
	require.NoError(t, engine.Validate())
	assert.Equal(t, 10*time.Minute, engine.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, engine.JWT.RenewalTTL)

	t.Setenv("GOACCOUNT_ACCESS_TTL", "48h")
	cfg, err = Parse()
	require.NoError(t, err)
	engine = cfg.Engine()
	assert.ErrorContains(t, engine.Validate(), "shorter than RenewalTTL")

	t.Setenv("GOACCOUNT_ACCESS_TTL", "2s")
	cfg, err = Parse()
	require.NoError(t, err)
	engine = cfg.Engine()
	assert.ErrorContains(t, engine.Validate(), "TombstoneTTL")
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "memory")
	os.Unsetenv("GOACCOUNT_JWT_SECRET")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsBadDriverAndSameSite(t *testing.T) {
	t.Setenv("GOACCOUNT_JWT_SECRET", testSecret)

	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "postgres")
	_, err := Parse()
	assert.ErrorContains(t, err, "GOACCOUNT_DATABASE_URL")

	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "mongo")
	_, err = Parse()
	assert.ErrorContains(t, err, "unknown directory driver")

	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "sqlite")
	t.Setenv("GOACCOUNT_COOKIE_SAMESITE", "sideways")
	_, err = Parse()
	assert.ErrorContains(t, err, "samesite")
}

func TestLoadReadsDotenvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "GOACCOUNT_JWT_SECRET=" + testSecret + "\nGOACCOUNT_DIRECTORY_DRIVER=sqlite\nGOACCOUNT_HTTP_ADDR=:9999\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("GOACCOUNT_HTTP_ADDR", ":7000")
	// Register cleanup for variables the dotenv file introduces.
	t.Setenv("GOACCOUNT_JWT_SECRET", "")
	os.Unsetenv("GOACCOUNT_JWT_SECRET")
	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "")
	os.Unsetenv("GOACCOUNT_DIRECTORY_DRIVER")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DirectoryDriver)
}

func TestLoadMissingDotenvIsIgnored(t *testing.T) {
	t.Setenv("GOACCOUNT_JWT_SECRET", testSecret)
	t.Setenv("GOACCOUNT_DIRECTORY_DRIVER", "memory")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
