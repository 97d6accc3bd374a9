package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := newViper()
	v.Set("JWT_SECRET", "s3cret")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisURL)
}

func TestFromViperOverrides(t *testing.T) {
	v := newViper()
	v.Set("JWT_SECRET", "s3cret")
	v.Set("DB_DRIVER", "MySQL")
	v.Set("CORS_ORIGINS", "http://a.test, http://b.test,")
	v.Set("RATE_LIMIT_RPS", 2.5)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestFromViperRejectsMissingSecret(t *testing.T) {
	v := newViper()
	v.Set("JWT_SECRET", "")

	_, err := FromViper(v)
	assert.EqualError(t, err, "JWT_SECRET must be set")
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	v := newViper()
	v.Set("JWT_SECRET", "x")
	v.Set("DB_DRIVER", "oracle")

	_, err := FromViper(v)
	assert.Error(t, err)
}
