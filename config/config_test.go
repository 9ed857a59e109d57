package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lotqc_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": ":8080",
		"db_driver": "pgx",
		"db_dsn": "postgres://postgres:password@db:5432/lots_db",
		"seed_on_start": false
	}`), 0o644))

	c, err := LoadFrom(path, map[string]string{
		"LOTQC_LISTEN_ADDR":  ":9090",
		"LOTQC_CORS_ORIGINS": "http://a.example,http://b.example",
		"LOTQC_LOG_FORMAT":   "json",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.ListenAddr, "env wins over file")
	assert.Equal(t, "pgx", c.DBDriver)
	assert.Equal(t, "postgres://postgres:password@db:5432/lots_db", c.DBDSN)
	assert.False(t, c.SeedOnStart)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "info", c.LogLevel, "untouched keys keep defaults")
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
		_, err := LoadFrom(path, map[string]string{})
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(dir, "none.json"), map[string]string{"LOTQC_DB_DRIVER": "oracle"})
		assert.ErrorContains(t, err, "db_driver")
	})

	t.Run("memory needs no dsn", func(t *testing.T) {
		c, err := LoadFrom(filepath.Join(dir, "none.json"), map[string]string{"LOTQC_DB_DRIVER": "MEMORY"})
		require.NoError(t, err)
		assert.Equal(t, "memory", c.DBDriver)
	})

	t.Run("bad seed flag", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(dir, "none.json"), map[string]string{"LOTQC_SEED_ON_START": "maybe"})
		assert.Error(t, err)
	})
}

func TestRedacted(t *testing.T) {
	c := Default()
	c.DBDSN = "postgres://postgres:password@db:5432/lots_db"
	assert.Equal(t, "postgres://***@db:5432/lots_db", c.Redacted().DBDSN)

	c.DBDSN = "host=db user=postgres password=secret dbname=lots_db"
	assert.Equal(t, "host=db user=postgres password=*** dbname=lots_db", c.Redacted().DBDSN)

	c.DBDSN = "./lots.db"
	assert.Equal(t, "./lots.db", c.Redacted().DBDSN)
}
