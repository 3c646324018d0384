package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyHolderDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewPolicyHolder()
	require.NoError(t, err)

	assert.Equal(t, DefaultStreakPolicy(), holder.Get())
}

func TestNewPolicyHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte(`streak:
  aggregateSubject: overall
  freezeInterval: 7
  maxFreezes: 3
  defaultTimezone: Asia/Jakarta
  activityTypes: [quiz_submit, login]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streak.yml"), content, 0o600))

	holder, err := NewPolicyHolder()
	require.NoError(t, err)

	policy := holder.Get()
	assert.Equal(t, 7, policy.FreezeInterval)
	assert.Equal(t, 3, policy.MaxFreezes)
	assert.Equal(t, "Asia/Jakarta", policy.DefaultTimezone)
}

func TestNewPolicyHolderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte(`streak:
  freezeInterval: 0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streak.yml"), content, 0o600))

	_, err := NewPolicyHolder()
	require.Error(t, err)
}

func TestStreakPolicyAllowsActivity(t *testing.T) {
	policy := DefaultStreakPolicy()

	assert.True(t, policy.AllowsActivity("login"))
	assert.True(t, policy.AllowsActivity("quiz_submit"))
	assert.False(t, policy.AllowsActivity("purchase"))
}

func TestLoadReadsRetrySettings(t *testing.T) {
	t.Setenv("STREAK_RETRY_MAX_ATTEMPTS", "0")
	t.Setenv("STREAK_RETRY_INITIAL_MS", "5")

	cfg := Load()

	assert.Equal(t, uint(1), cfg.Retry.MaxAttempts)
	assert.Equal(t, int64(5), cfg.Retry.InitialDelay.Milliseconds())
}
