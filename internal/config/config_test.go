// Package config_test tests the config package.
package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/digit-pulse-bot/internal/config"
)

// createTestConfigFile creates a dummy config file for testing.
func createTestConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := createTestConfigFile(t, "signal:\n  cache_ttl_ms: 500\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Signal.CacheTTLMs)
	assert.Equal(t, 5, cfg.Risk.MaxConsecutiveLosses)
	assert.Equal(t, -100.0, cfg.Risk.DailyLossLimit)
	assert.Equal(t, 10, cfg.Bot.LoopIntervalSec)
	assert.Equal(t, 5, cfg.Bot.OrderTimeoutSec)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, bool(cfg.Gateway.Simulated))
	// The default symbol universe is applied when none is configured.
	assert.Equal(t, config.DefaultSymbols, cfg.Symbols)
}

func TestLoadConfig_Symbols(t *testing.T) {
	path := createTestConfigFile(t, `
symbols:
  - name: R_10
    precision: 3
  - name: R_100
    precision: 2
bot:
  loop_interval_sec: 2
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Symbols, 2)
	assert.Equal(t, "R_10", cfg.Symbols[0].Name)
	assert.Equal(t, int32(3), cfg.Symbols[0].Precision)
	assert.Equal(t, 2, cfg.Bot.LoopIntervalSec)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := createTestConfigFile(t, "{}\n")

	t.Setenv("DERIV_API_TOKEN", "tok-123")
	t.Setenv("DERIV_APP_ID", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.APIToken)
	assert.Equal(t, "42", cfg.Gateway.AppID)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty symbol name",
			content: "symbols:\n  - name: \"\"\n    precision: 2\n",
		},
		{
			name:    "negative precision",
			content: "symbols:\n  - name: R_10\n    precision: -1\n",
		},
		{
			name:    "zero loop interval",
			content: "bot:\n  loop_interval_sec: 0\n",
		},
		{
			name:    "positive daily loss limit",
			content: "risk:\n  daily_loss_limit: 50\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestConfigFile(t, tt.content)
			_, err := config.LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_SimulatedFlexBool(t *testing.T) {
	// The simulated flag accepts booleans, strings and numbers.
	for _, raw := range []string{"true", `"true"`, "1"} {
		path := createTestConfigFile(t, fmt.Sprintf("gateway:\n  simulated: %s\n", raw))
		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)
		assert.True(t, bool(cfg.Gateway.Simulated), "raw value %s", raw)
	}
}
