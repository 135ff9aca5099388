package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8087", cfg.AppPort)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Push.Timeout)
	assert.Equal(t, "secret", cfg.JWT.Secret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("PUSH_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Push.Timeout)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "market", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=market sslmode=disable", c.DSN())
}
