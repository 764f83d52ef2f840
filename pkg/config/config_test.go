package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so tests see the defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "SNAPSHOT_SOURCE", "DATA_DIR", "DATABASE_URL",
		"ANALYSIS_CONFIG", "API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST",
		"SCHEDULE_ENABLED", "SCHEDULE_SPEC", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8084", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "file", cfg.Source)
	assert.False(t, cfg.ScheduleEnabled)
	assert.Equal(t, "0 0 6 * * *", cfg.ScheduleSpec)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadSchedulerToggle(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULE_ENABLED", "true")
	t.Setenv("SCHEDULE_SPEC", "0 30 7 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.ScheduleEnabled)
	assert.Equal(t, "0 30 7 * * *", cfg.ScheduleSpec)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown environment", map[string]string{"ENV": "qa"}},
		{"unknown source", map[string]string{"SNAPSHOT_SOURCE": "ftp"}},
		{"postgres without url", map[string]string{"SNAPSHOT_SOURCE": "postgres"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
