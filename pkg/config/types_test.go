package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMProviderConfig_SetDefaults_FillsProviderSpecificValues(t *testing.T) {
	cfg := &LLMProviderConfig{Type: "anthropic"}
	cfg.SetDefaults()

	assert.Equal(t, "claude-3-7-sonnet-latest", cfg.Model)
	assert.Equal(t, "https://api.anthropic.com", cfg.Host)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 8000, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2, cfg.RetryDelay)
}

func TestLLMProviderConfig_SetDefaults_FallsBackToOpenAI(t *testing.T) {
	cfg := &LLMProviderConfig{}
	cfg.SetDefaults()

	assert.Equal(t, "openai", cfg.Type)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
}

func TestLLMProviderConfig_SetDefaults_ReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	cfg := &LLMProviderConfig{Type: "anthropic"}
	cfg.SetDefaults()
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLLMProviderConfig_Validate_RequiresAPIKeyForOpenAI(t *testing.T) {
	cfg := &LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: "https://api.openai.com/v1"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLLMProviderConfig_Validate_RejectsOutOfRangeTemperature(t *testing.T) {
	cfg := &LLMProviderConfig{Type: "anthropic", Model: "m", Host: "h", Temperature: 3}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}

func TestLLMProviderConfig_Validate_PassesWithRequiredFields(t *testing.T) {
	cfg := &LLMProviderConfig{Type: "anthropic", Model: "claude-3-7-sonnet-latest", Host: "https://api.anthropic.com"}
	assert.NoError(t, cfg.Validate())
}

func TestToolConfigs_SetDefaults_AppliesPerToolDefaultsToConfiguredTools(t *testing.T) {
	tc := &ToolConfigs{Tools: map[string]ToolConfig{
		"my_command": {Type: ToolTypeCommand},
	}}
	tc.SetDefaults()

	cmd := tc.Tools["my_command"]
	assert.True(t, cmd.NeedsApproval())
	assert.Equal(t, "30s", cmd.MaxExecutionTime)
}

func TestToolConfigs_Validate_PropagatesToolValidationError(t *testing.T) {
	tc := &ToolConfigs{Tools: map[string]ToolConfig{
		"broken": {Type: ToolTypeMCP}, // missing URL and Command
	}}
	err := tc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
