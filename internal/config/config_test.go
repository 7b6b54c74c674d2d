package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "0 3 * * *", cfg.Backup.Schedule)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, 20, cfg.Reader.ParagraphsPerPage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
}

func TestNewConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PARAGRAPHS_PER_PAGE=5\nLOG_FORMAT=json\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("PARAGRAPHS_PER_PAGE")
		os.Unsetenv("LOG_FORMAT")
	})

	cfg := NewConfig()

	assert.Equal(t, 5, cfg.Reader.ParagraphsPerPage)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   Storage{Backend: StorageSQLite},
			Reader:    Reader{ParagraphsPerPage: 10},
			RateLimit: RateLimit{Enabled: true, RPS: 1, Burst: 1},
		}
	}

	t.Run("postgres needs a dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Backend = StoragePostgres
		assert.Error(t, cfg.Validate())
		cfg.Storage.PostgresDSN = "postgres://localhost/deepread"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Backend = "mongo"
		assert.Error(t, cfg.Validate())
	})

	t.Run("page size", func(t *testing.T) {
		cfg := valid()
		cfg.Reader.ParagraphsPerPage = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rate limit", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.Burst = 0
		assert.Error(t, cfg.Validate())
		cfg.RateLimit.Enabled = false
		assert.NoError(t, cfg.Validate())
	})
}
