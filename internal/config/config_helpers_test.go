package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"unset uses default", "", false, 42},
		{"valid", "100", true, 100},
		{"negative", "-10", true, -10},
		{"zero", "0", true, 0},
		{"not a number", "ten", true, 42},
		{"float", "42.5", true, 42},
		{"empty", "", true, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			if tt.set {
				t.Setenv("WORKER_COUNT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsInt("WORKER_COUNT", 42))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"10m", 10 * time.Minute},
		{"1h30m45s", time.Hour + 30*time.Minute + 45*time.Second},
		{"500ms", 500 * time.Millisecond},
		{"0s", 0},
		{"100", 5 * time.Minute},
		{"soon", 5 * time.Minute},
		{"", 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("COLLAPSE_DELAY", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("COLLAPSE_DELAY", 5*time.Minute))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a,b ,"))
}

func TestParseAuditChannels(t *testing.T) {
	got, err := parseAuditChannels("g1:c1, g2:c2,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"g1": "c1", "g2": "c2"}, got)

	for _, bad := range []string{"g1", ":c1", "g1:", "g1:c1,g2"} {
		_, err := parseAuditChannels(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoad_DatabasePool(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("DB_MAX_CONN_IDLE_TIME", "10m")
	t.Setenv("DB_MAX_CONN_LIFETIME", "bad-duration")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 50, cfg.DBMaxConns)
	assert.Equal(t, 10*time.Minute, cfg.DBMaxConnIdleTime)
	assert.Equal(t, DefaultDBMaxConnLifetime, cfg.DBMaxConnLifetime, "invalid values fall back to defaults")
}

func TestLoad_RejectsZeroPool(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("DB_MAX_CONNS", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DBMaxConns failed min")
}
