package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("CACHE_TTL_SECONDS", "")

	c := Load()
	assert.Equal(t, "mysql", c.StorageDriver)
	assert.Equal(t, devJWTSecret, c.JWTSecret)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.NotEmpty(t, c.SessionFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "0123456789abcdef-prod")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("REPORT_WORKERS", "2")

	c := Load()
	assert.Equal(t, "memory", c.StorageDriver)
	assert.Equal(t, 30*time.Minute, c.JWTTTL)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, 2, c.ReportWorkers)
	require.NoError(t, c.ValidateServer())
}

func TestValidateServer(t *testing.T) {
	base := Config{StorageDriver: "memory", JWTSecret: "0123456789abcdef"}
	require.NoError(t, base.ValidateServer())

	c := base
	c.StorageDriver = "postgres"
	assert.Error(t, c.ValidateServer())

	c = base
	c.JWTSecret = "short"
	assert.Error(t, c.ValidateServer())

	c = base
	c.SuperAdminEmail, c.SuperAdminPassword = "root@example.com", "short"
	assert.Error(t, c.ValidateServer())

	c = base
	c.StorageDriver, c.MySQLDSN = "mysql", ""
	assert.Error(t, c.ValidateServer())
}
