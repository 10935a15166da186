package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flowkit/pkg/config"
)

type testConfig struct {
	APIKey  string `env:"TEST_FLOW_API_KEY,required,notEmpty"`
	Env     string `env:"TEST_FLOW_ENV" envDefault:"sandbox"`
	Retries int    `env:"TEST_FLOW_RETRIES" envDefault:"3"`
}

func TestLoad(t *testing.T) {
	t.Run("parses values and defaults", func(t *testing.T) {
		t.Setenv("TEST_FLOW_API_KEY", "key-123")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "key-123", cfg.APIKey)
		assert.Equal(t, "sandbox", cfg.Env)
		assert.Equal(t, 3, cfg.Retries)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_FLOW_API_KEY", "key-123")
		t.Setenv("TEST_FLOW_ENV", "production")
		t.Setenv("TEST_FLOW_RETRIES", "5")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "production", cfg.Env)
		assert.Equal(t, 5, cfg.Retries)
	})

	t.Run("empty required value fails", func(t *testing.T) {
		t.Setenv("TEST_FLOW_API_KEY", "")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[testConfig](nil), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns on success", func(t *testing.T) {
		t.Setenv("TEST_FLOW_API_KEY", "key-123")

		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("panics on failure", func(t *testing.T) {
		t.Setenv("TEST_FLOW_API_KEY", "")

		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
