package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "file::memory:?cache=shared", cfg.StoreDSN)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Calendar.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LLM_BASE_URL", "https://api.groq.com/openai")
	t.Setenv("LLM_MODEL", "custom-model")
	t.Setenv("LLM_TIMEOUT", "10s")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://api.groq.com/openai", cfg.LLM.BaseURL)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTPPort: 8080,
		LLM:      LLMConfig{BaseURL: "http://localhost:4000", Timeout: time.Second},
		Calendar: CalendarConfig{BaseURL: "http://localhost:8200", Timeout: time.Second},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.HTTPPort = 70000 }},
		{"missing llm base url", func(c *Config) { c.LLM.BaseURL = "" }},
		{"missing calendar base url", func(c *Config) { c.Calendar.BaseURL = "" }},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"negative calendar timeout", func(c *Config) { c.Calendar.Timeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
