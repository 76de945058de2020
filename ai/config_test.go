package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.SummaryHost)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	assert.NotEmpty(t, cfg.SummaryModel)
	assert.Positive(t, cfg.ContextBudget)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("https://api.openai.com"),
		WithToken("sk-test"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithSummaryModel("gpt-4o-mini"),
		WithTemperature(0.0),
		WithContextBudget(4000),
	)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "https://api.openai.com/v1", cfg.SummaryHost)
	assert.Equal(t, "sk-test", cfg.Token)
	assert.Equal(t, 4000, cfg.ContextBudget)
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host", host: "http://localhost:9100", want: "http://localhost:9100/v1"},
		{name: "trailing slash", host: "http://localhost:9100/", want: "http://localhost:9100/v1"},
		{name: "already normalized", host: "http://localhost:9100/v1", want: "http://localhost:9100/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.SummaryHost)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }},
		{name: "missing summary host", mutate: func(c *Config) { c.SummaryHost = "" }},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }},
		{name: "missing summary model", mutate: func(c *Config) { c.SummaryModel = "" }},
		{name: "missing token", mutate: func(c *Config) { c.Token = "" }},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 2.5 }},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -0.1 }},
		{name: "zero context budget", mutate: func(c *Config) { c.ContextBudget = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
