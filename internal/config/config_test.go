package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("OTP_TTL", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "root:root@tcp(localhost:3306)/matchmaker?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 20, cfg.Match.DefaultPageSize)
}

func TestNew_PostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "")

	cfg := New()

	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Contains(t, cfg.DB.DSN, "host=pg port=5432")
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("OTP_RESEND_COOLDOWN", "30")
	t.Setenv("RESET_TOKEN_TTL", "2m")
	t.Setenv("LOG_SOURCE", "yes")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := New()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file::memory:", cfg.DB.DSN)
	assert.Equal(t, 30*time.Second, cfg.OTP.ResendCooldown)
	assert.Equal(t, 2*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.True(t, cfg.Log.Source)
	assert.Equal(t, 0, cfg.Redis.DB)
}
