package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, int64(10), cfg.ScoreBaseAward)
	assert.Equal(t, int64(5), cfg.ScoreMutualBonus)
	assert.Equal(t, 4, cfg.PropagationConcurrency)
	assert.Equal(t, 3, cfg.TaskMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.TaskRetryBackoff)
	assert.False(t, cfg.DevAuth)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_AUTH", "true")
	t.Setenv("SCORE_MUTUAL_BONUS", "7")
	t.Setenv("DEFAULT_LANGUAGE", "fa")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.DevAuth)
	assert.Equal(t, int64(7), cfg.ScoreMutualBonus)
	assert.Equal(t, "fa", cfg.DefaultLanguage)
}
