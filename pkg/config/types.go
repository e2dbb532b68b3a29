// Package config provides configuration types and utilities for the agent
// orchestrator. This file holds the provider and tool-handler configuration
// blocks; the root Config assembling them lives in config.go.
package config

import (
	"fmt"
	"time"
)

// ============================================================================
// LLM PROVIDER CONFIGURATION
// ============================================================================

type LLMProviderConfig struct {
	Type        string  `yaml:"type"`        // "ollama", "openai", "anthropic", "gemini"
	Model       string  `yaml:"model"`       // Model name
	APIKey      string  `yaml:"api_key"`     // API key (for OpenAI, Anthropic, Gemini)
	Host        string  `yaml:"host"`        // Host for ollama or custom OpenAI endpoint
	Temperature float64 `yaml:"temperature"` // Temperature setting
	MaxTokens   int     `yaml:"max_tokens"`  // Max tokens
	Timeout     int     `yaml:"timeout"`     // Request timeout in seconds
	MaxRetries  int     `yaml:"max_retries"` // Max retry attempts for rate limits (default: 5)
	RetryDelay  int     `yaml:"retry_delay"` // Base retry delay in seconds (default: 2, exponential backoff)

	// Structured output configuration (optional)
	StructuredOutput *StructuredOutputConfig `yaml:"structured_output,omitempty"`
}

// StructuredOutputConfig represents configuration for structured output.
// Works across all providers (OpenAI, Anthropic, Gemini).
type StructuredOutputConfig struct {
	// Format: "json", "xml", "enum"
	Format string `yaml:"format,omitempty"`

	// Schema: JSON schema as YAML/JSON (for format="json")
	Schema map[string]interface{} `yaml:"schema,omitempty"`

	// Enum: List of allowed values (for format="enum")
	Enum []string `yaml:"enum,omitempty"`

	// Prefill: Prefill string for Anthropic (optional, provider-specific)
	Prefill string `yaml:"prefill,omitempty"`

	// PropertyOrdering: Property order for Gemini (optional, provider-specific)
	PropertyOrdering []string `yaml:"property_ordering,omitempty"`
}

// Validate implements Config.Validate for LLMProviderConfig.
func (c *LLMProviderConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Type == "openai" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for OpenAI")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be non-negative")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for LLMProviderConfig.
func (c *LLMProviderConfig) SetDefaults() {
	// Zero-config: Set default type and model if not specified.
	// Default to OpenAI (requires OPENAI_API_KEY environment variable).
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Model == "" {
		switch c.Type {
		case "openai":
			c.Model = "gpt-4o"
		case "anthropic":
			c.Model = "claude-3-7-sonnet-latest"
		case "gemini":
			c.Model = "gemini-2.0-flash-exp"
		default:
			c.Model = "gpt-4o"
		}
	}
	if c.Host == "" {
		switch c.Type {
		case "openai":
			c.Host = "https://api.openai.com/v1"
		case "anthropic":
			c.Host = "https://api.anthropic.com"
		case "gemini":
			c.Host = "https://generativelanguage.googleapis.com"
		default:
			c.Host = "https://api.openai.com/v1"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 8000
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.MaxRetries == 0 {
		// Aggressive retry strategy to support "trust the LLM" philosophy.
		// With 5 retries and exponential backoff (2s, 4s, 8s, 16s, 32s):
		// total max wait is ~62 seconds, supporting long ReAct loops without
		// premature failure.
		c.MaxRetries = 5
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2
	}
	if c.APIKey == "" {
		// Note: don't use "${VAR}" syntax here, SetDefaults runs after env expansion.
		c.APIKey = GetProviderAPIKey(c.Type)
	}
}

// ============================================================================
// TOOL HANDLER CONFIGURATIONS
// ============================================================================
//
// These configure the concrete per-tool handlers in pkg/tools; the generic,
// schema-driven ToolConfig that drives tool construction from a catalog of
// enabled tools lives in tool.go.

// CommandToolsConfig represents command tool configuration.
type CommandToolsConfig struct {
	AllowedCommands  []string      `yaml:"allowed_commands"`
	DeniedCommands   []string      `yaml:"denied_commands"`
	WorkingDirectory string        `yaml:"working_directory"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	EnableSandboxing *bool         `yaml:"enable_sandboxing"`
}

// Validate implements Config.Validate for CommandToolsConfig.
func (c *CommandToolsConfig) Validate() error {
	if len(c.AllowedCommands) == 0 {
		return fmt.Errorf("at least one allowed command is required")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for CommandToolsConfig.
func (c *CommandToolsConfig) SetDefaults() {
	if len(c.AllowedCommands) == 0 {
		c.AllowedCommands = []string{
			"cat", "head", "tail", "ls", "find", "grep", "wc", "pwd",
			"git", "npm", "go", "curl", "wget", "echo", "date",
		}
	}
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "./"
	}
	if c.MaxExecutionTime == 0 {
		c.MaxExecutionTime = 30 * time.Second
	}
	if c.EnableSandboxing == nil {
		c.EnableSandboxing = BoolPtr(true)
	}
	if len(c.DeniedCommands) == 0 {
		c.DeniedCommands = []string{"rm", "dd", "mkfs", "shutdown", "reboot", "sudo", "su"}
	}
}

// FileWriterConfig represents file writer tool configuration.
type FileWriterConfig struct {
	MaxFileSize       int      `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	DeniedExtensions  []string `yaml:"denied_extensions"`
	BackupOnOverwrite bool     `yaml:"backup_on_overwrite"`
	WorkingDirectory  string   `yaml:"working_directory"`
}

// Validate implements Config.Validate for FileWriterConfig.
func (c *FileWriterConfig) Validate() error {
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be non-negative")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for FileWriterConfig.
func (c *FileWriterConfig) SetDefaults() {
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 1048576 // 1MB default
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".go", ".yaml", ".md", ".json", ".txt", ".sh"}
	}
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "./"
	}
}

// SearchReplaceConfig represents search/replace tool configuration.
type SearchReplaceConfig struct {
	MaxReplacements  int    `yaml:"max_replacements"`
	ShowDiff         *bool  `yaml:"show_diff"`
	CreateBackup     *bool  `yaml:"create_backup"`
	WorkingDirectory string `yaml:"working_directory"`
}

// Validate implements Config.Validate for SearchReplaceConfig.
func (c *SearchReplaceConfig) Validate() error {
	if c.MaxReplacements < 0 {
		return fmt.Errorf("max_replacements must be non-negative")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for SearchReplaceConfig.
func (c *SearchReplaceConfig) SetDefaults() {
	if c.MaxReplacements == 0 {
		c.MaxReplacements = 100
	}
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "./"
	}
	if c.ShowDiff == nil {
		c.ShowDiff = BoolPtr(true)
	}
	if c.CreateBackup == nil {
		c.CreateBackup = BoolPtr(true)
	}
}

// ReadFileConfig represents read_file tool configuration.
type ReadFileConfig struct {
	MaxFileSize      int    `yaml:"max_file_size"`
	WorkingDirectory string `yaml:"working_directory"`
	ShowLineNumbers  *bool  `yaml:"show_line_numbers"`
}

// Validate implements Config.Validate for ReadFileConfig.
func (c *ReadFileConfig) Validate() error {
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be non-negative")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for ReadFileConfig.
func (c *ReadFileConfig) SetDefaults() {
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 10485760
	}
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "./"
	}
	if c.ShowLineNumbers == nil {
		c.ShowLineNumbers = BoolPtr(true)
	}
}

// GrepSearchConfig represents grep_search tool configuration.
type GrepSearchConfig struct {
	MaxResults       int    `yaml:"max_results"`
	MaxFileSize      int    `yaml:"max_file_size"`
	WorkingDirectory string `yaml:"working_directory"`
	ContextLines     int    `yaml:"context_lines"`
}

// Validate implements Config.Validate for GrepSearchConfig.
func (c *GrepSearchConfig) Validate() error {
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be non-negative")
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for GrepSearchConfig.
func (c *GrepSearchConfig) SetDefaults() {
	if c.MaxResults == 0 {
		c.MaxResults = 1000
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 10485760
	}
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "./"
	}
	if c.ContextLines == 0 {
		c.ContextLines = 2
	}
}

// ToolConfigs is the root config's tool enablement section. The Tools field
// is inlined so a YAML document can list tools at the `tools:` key without an
// extra level of nesting.
type ToolConfigs struct {
	Tools map[string]ToolConfig `yaml:",inline"`
}

// Validate implements Config.Validate for ToolConfigs.
func (c *ToolConfigs) Validate() error {
	for name, tool := range c.Tools {
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("tool '%s' validation failed: %w", name, err)
		}
	}
	return nil
}

// SetDefaults implements Config.SetDefaults for ToolConfigs.
func (c *ToolConfigs) SetDefaults() {
	if c.Tools == nil {
		c.Tools = make(map[string]ToolConfig)
	}

	// Zero-config: populate the built-in tool set only if nothing was
	// configured. The set includes the file-modifying tools (write_file,
	// search_replace), which ToolConfig.SetDefaults marks RequireApproval.
	if len(c.Tools) == 0 {
		for name, cfg := range GetDefaultToolConfigs() {
			c.Tools[name] = *cfg
		}
	}

	for name, tool := range c.Tools {
		tool.SetDefaults()
		c.Tools[name] = tool
	}
}
