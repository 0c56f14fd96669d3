package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsFillEveryField(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8090", cfg.Server.Origin)
	assert.Equal(t, "planner_session", cfg.Auth.CookieName)
	assert.Equal(t, 30*24, cfg.Auth.SessionTTLHours)
	assert.Equal(t, 30, cfg.Auth.LoginTTLMinutes)
	assert.Equal(t, 4, cfg.Calendar.WeeksBefore)
	assert.Equal(t, 12, cfg.Calendar.WeeksAfter)
	assert.Equal(t, "console", cfg.Mail.Mode)
}

func TestLoadAppliesDefaultsOverPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9999"
auth:
  login_ttl_minutes: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Auth.LoginTTLMinutes)
	// Untouched fields fall back to defaults.
	assert.Equal(t, "planner_session", cfg.Auth.CookieName)
	assert.Equal(t, 12, cfg.Calendar.WeeksAfter)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":8090", cfg.Server.Addr)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PLANNER_ADDR", ":7000")
	t.Setenv("PLANNER_DB_DSN", "postgres://localhost/planner")
	t.Setenv("PLANNER_SESSION_TTL_HOURS", "48")
	t.Setenv("PLANNER_CALENDAR_WEEKS_AFTER", "garbage")

	cfg := FromEnv(Default())

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "postgres://localhost/planner", cfg.Database.DSN)
	assert.Equal(t, 48, cfg.Auth.SessionTTLHours)
	// Unparsable values leave the setting alone.
	assert.Equal(t, 12, cfg.Calendar.WeeksAfter)
}
