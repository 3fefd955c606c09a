package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AnalyzerLocal, cfg.AnalyzerMode)
	assert.Equal(t, "@every 1m", cfg.ReminderSchedule)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 15*time.Second, cfg.SMTPTimeout)
	assert.False(t, cfg.WhatsAppEnabled())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, "JWT_SECRET is required", err.Error())
}

func TestLoad_RemoteModeRequiresAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYZER_MODE", "remote")
	t.Setenv("AI_GATEWAY_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_GATEWAY_API_KEY")

	t.Setenv("AI_GATEWAY_API_KEY", "key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AnalyzerRemote, cfg.AnalyzerMode)
}

func TestLoad_UnknownAnalyzerMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYZER_MODE", "magic")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYZER_MODE")
}

func TestLocation_FallsBackOnInvalidZone(t *testing.T) {
	cfg := &Config{LocalTimezone: "Not/AZone"}
	assert.Equal(t, time.Local, cfg.Location())

	cfg.LocalTimezone = "UTC"
	assert.Equal(t, time.UTC.String(), cfg.Location().String())
}

func TestParse_SkipsValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SQLITE_PATH", "/tmp/reference.db")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reference.db", cfg.SQLitePath)
}
