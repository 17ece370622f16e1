// cliparse/cliparse_test.go
package cliparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("CONTROLLER_KEY_SALT", "test-salt")
	t.Setenv("PARTICIPANT_TOKEN_SALT", "test-participant")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("PUBLIC_BASE_URL", "https://live.example.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("QUIZ_SCORING", "speed")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, "test-salt", cfg.ControllerSalt)
	assert.Equal(t, "test-participant", cfg.ParticipantSalt)
	assert.Equal(t, "https://live.example.com", cfg.BaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "speed", cfg.Scoring)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("QUIZ_SCORING", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 3318, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "http://localhost:3318", cfg.BaseURL)
	assert.Equal(t, "correct", cfg.Scoring)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{
		"-p", "8080",
		"-d", "file:other.db",
		"-controller-salt", "s1",
		"-participant-salt", "s2",
		"-scoring", "speed",
		"-seed", "polls.json",
	})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:other.db", cfg.DatabaseURL)
	assert.Equal(t, "s1", cfg.ControllerSalt)
	assert.Equal(t, "s2", cfg.ParticipantSalt)
	assert.Equal(t, "speed", cfg.Scoring)
	assert.Equal(t, "polls.json", cfg.SeedFile)
}

func TestParseFlags_MemoryNeedsNoDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err := ParseFlags([]string{})
	require.Error(t, err)

	cfg, err := ParseFlags([]string{"-t", "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DatabaseType)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing controller salt", map[string]string{"CONTROLLER_KEY_SALT": ""}, nil},
		{"missing participant salt", map[string]string{"PARTICIPANT_TOKEN_SALT": ""}, nil},
		{"bad port", map[string]string{"PORT": "abc"}, nil},
		{"unknown database type", nil, []string{"-t", "mysql"}},
		{"unknown scoring", nil, []string{"-scoring", "fastest"}},
		{"unknown flag", nil, []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("PORT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
