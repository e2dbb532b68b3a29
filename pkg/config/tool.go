// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import "fmt"

// ToolType identifies the tool type.
type ToolType string

const (
	// ToolTypeMCP is an MCP (Model Context Protocol) tool.
	ToolTypeMCP ToolType = "mcp"

	// ToolTypeFunction is a built-in function tool.
	ToolTypeFunction ToolType = "function"

	// ToolTypeCommand is a built-in command execution tool.
	ToolTypeCommand ToolType = "command"
)

// ToolConfig configures a tool.
type ToolConfig struct {
	// Type of tool (mcp, function, command).
	Type ToolType `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"title=Tool Type,description=Type of tool,enum=mcp,enum=function,enum=command,default=mcp"`

	// Enabled controls whether the tool is active.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"title=Enabled,description=Whether the tool is active,default=true"`

	// Description of the tool.
	Description string `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description,description=What this tool does"`

	// MCP-specific configuration
	// URL is the MCP server URL (for type: mcp).
	URL string `yaml:"url,omitempty" json:"url,omitempty" jsonschema:"title=MCP URL,description=MCP server URL (for type=mcp)"`

	// ServerURL is an alias source for URL used by the MCP tool source
	// constructor; kept distinct from URL because the MCP handler reads it
	// directly rather than through the generic Type dispatch.
	ServerURL string `yaml:"server_url,omitempty" json:"server_url,omitempty" jsonschema:"title=MCP Server URL,description=MCP server URL (for type=mcp)"`

	// Timeout bounds each JSON-RPC HTTP request the MCP source makes, as a
	// duration string (for type: mcp).
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,description=MCP JSON-RPC request timeout (for type=mcp)"`

	// Internal marks an MCP source as hidden from the agent-facing tool list.
	Internal *bool `yaml:"internal,omitempty" json:"internal,omitempty" jsonschema:"title=Internal,description=Hide this MCP source from the agent-facing tool list"`

	// InsecureSkipVerify disables TLS certificate verification for an MCP
	// source (for type: mcp, testing only).
	InsecureSkipVerify *bool `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty" jsonschema:"title=Insecure Skip Verify,description=Disable TLS certificate verification (testing only)"`

	// CACertificate is a path to a CA certificate used to verify the MCP
	// server's TLS certificate (for type: mcp).
	CACertificate string `yaml:"ca_certificate,omitempty" json:"ca_certificate,omitempty" jsonschema:"title=CA Certificate,description=Path to a CA certificate used to verify the MCP server's TLS certificate"`

	// Transport names an MCP transport (stdio, sse, streamable-http).
	// SetDefaults fills it in, but the MCP tool source does not read it: it
	// always sends JSON-RPC requests by HTTP POST to ServerURL (or URL).
	// Command, Args and Env below are likewise not read by the MCP tool
	// source, which does not start a server process.
	Transport string `yaml:"transport,omitempty" json:"transport,omitempty" jsonschema:"title=Transport,description=MCP transport type,enum=stdio,enum=sse,enum=streamable-http"`

	// Command for MCP stdio transport (not to be confused with CommandTool).
	Command string `yaml:"command,omitempty" json:"command,omitempty" jsonschema:"title=Command,description=Command to execute MCP server (for type=mcp stdio)"`

	// Args for MCP stdio transport.
	Args []string `yaml:"args,omitempty" json:"args,omitempty" jsonschema:"title=Args,description=Arguments for MCP stdio transport"`

	// Env for MCP stdio transport.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty" jsonschema:"title=Environment Variables,description=Environment variables for MCP stdio transport"`

	// Filter limits which tools are exposed from an MCP server.
	Filter []string `yaml:"filter,omitempty" json:"filter,omitempty" jsonschema:"title=Filter,description=Limit which tools are exposed from MCP server"`

	// Function-specific configuration
	// Handler is the function name (for type: function).
	Handler string `yaml:"handler,omitempty" json:"handler,omitempty" jsonschema:"title=Handler,description=Function name (for type=function)"`

	// Parameters schema (for type: function).
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty" jsonschema:"title=Parameters,description=Parameters schema (for type=function)"`

	// Command tool configuration (for type: command)
	// AllowedCommands is a whitelist of allowed base commands.
	AllowedCommands []string `yaml:"allowed_commands,omitempty" json:"allowed_commands,omitempty" jsonschema:"title=Allowed Commands,description=Whitelist of allowed base commands"`

	// DeniedCommands is a blacklist of denied base commands.
	DeniedCommands []string `yaml:"denied_commands,omitempty" json:"denied_commands,omitempty" jsonschema:"title=Denied Commands,description=Blacklist of denied base commands"`

	// WorkingDirectory for command execution.
	WorkingDirectory string `yaml:"working_directory,omitempty" json:"working_directory,omitempty" jsonschema:"title=Working Directory,description=Working directory for command execution"`

	// MaxExecutionTime limits command execution duration.
	MaxExecutionTime string `yaml:"max_execution_time,omitempty" json:"max_execution_time,omitempty" jsonschema:"title=Max Execution Time,description=Maximum command execution duration"`

	// DenyByDefault requires explicit allowed_commands whitelist.
	DenyByDefault *bool `yaml:"deny_by_default,omitempty" json:"deny_by_default,omitempty" jsonschema:"title=Deny By Default,description=Require explicit allowed_commands whitelist,default=false"`

	// HITL (Human-in-the-Loop) settings
	// RequireApproval requires user approval before execution.
	RequireApproval *bool `yaml:"require_approval,omitempty" json:"require_approval,omitempty" jsonschema:"title=Requires Approval (HITL),description=Whether this tool requires human approval,default=false"`

	// ApprovalPrompt is the message shown when requesting approval.
	ApprovalPrompt string `yaml:"approval_prompt,omitempty" json:"approval_prompt,omitempty" jsonschema:"title=Approval Prompt,description=Message shown when requesting approval"`

	// EnableSandboxing restricts command execution to the allowed_commands whitelist (type=command).
	EnableSandboxing *bool `yaml:"enable_sandboxing,omitempty" json:"enable_sandboxing,omitempty" jsonschema:"title=Enable Sandboxing,description=Restrict command execution to the allowed_commands whitelist,default=true"`

	// MaxFileSize limits the size in bytes a read_file/write_file/grep_search handler will touch.
	MaxFileSize int64 `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty" jsonschema:"title=Max File Size,description=Maximum file size in bytes"`

	// MaxResults limits the number of matches a grep_search handler returns.
	MaxResults int `yaml:"max_results,omitempty" json:"max_results,omitempty" jsonschema:"title=Max Results,description=Maximum number of search results"`

	// ContextLines sets the default context window for grep_search matches.
	ContextLines int `yaml:"context_lines,omitempty" json:"context_lines,omitempty" jsonschema:"title=Context Lines,description=Lines of context shown before a grep_search match"`

	// MaxReplacements bounds how many occurrences search_replace may rewrite in one call.
	MaxReplacements int `yaml:"max_replacements,omitempty" json:"max_replacements,omitempty" jsonschema:"title=Max Replacements,description=Maximum replacements per search_replace call"`

	// AllowedExtensions whitelists file extensions write_file may create or overwrite.
	AllowedExtensions []string `yaml:"allowed_extensions,omitempty" json:"allowed_extensions,omitempty" jsonschema:"title=Allowed Extensions,description=File extensions write_file may create or overwrite"`

	// DeniedExtensions blacklists file extensions write_file must refuse.
	DeniedExtensions []string `yaml:"denied_extensions,omitempty" json:"denied_extensions,omitempty" jsonschema:"title=Denied Extensions,description=File extensions write_file must refuse"`
}

// SetDefaults applies default values.
func (c *ToolConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = ToolTypeMCP
	}

	if c.Enabled == nil {
		c.Enabled = BoolPtr(true)
	}

	if c.Type == ToolTypeCommand && c.MaxExecutionTime == "" {
		c.MaxExecutionTime = "30s"
	}

	if c.Type == ToolTypeMCP && c.Transport == "" {
		// Auto-detect transport from URL
		if c.URL != "" {
			c.Transport = "sse" // Default for URL-based
		} else if c.Command != "" {
			c.Transport = "stdio"
		}
	}

	// Smart approval defaults based on tool type and handler.
	// An explicit require_approval value in the config is left as set.
	if c.RequireApproval == nil {
		switch c.Type {
		case ToolTypeCommand:
			// Command tools: require approval by default for safety
			c.RequireApproval = BoolPtr(true)
		case ToolTypeFunction:
			// Function tools: set approval based on handler name
			switch c.Handler {
			case "write_file", "search_replace":
				// File modification tools: require approval (high risk)
				c.RequireApproval = BoolPtr(true)
			case "read_file", "grep_search":
				// Read-only or safe operations: no approval needed
				c.RequireApproval = BoolPtr(false)
			default:
				// Unknown function tools: default to requiring approval for safety
				c.RequireApproval = BoolPtr(true)
			}
		default:
			// Other tool types: no approval by default
			c.RequireApproval = BoolPtr(false)
		}
	}
}

// Validate checks the tool configuration.
func (c *ToolConfig) Validate() error {
	validTypes := []ToolType{ToolTypeMCP, ToolTypeFunction, ToolTypeCommand}
	isValid := false
	for _, t := range validTypes {
		if c.Type == t {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid tool type %q (valid: mcp, function, command)", c.Type)
	}

	if c.Type == ToolTypeMCP {
		if c.URL == "" && c.Command == "" {
			return fmt.Errorf("mcp tool requires url or command")
		}
	}

	if c.Type == ToolTypeFunction {
		if c.Handler == "" {
			return fmt.Errorf("function tool requires handler")
		}
	}

	// Command tools validation is lenient - defaults are applied

	return nil
}

// IsEnabled returns whether the tool is enabled.
func (c *ToolConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// NeedsApproval returns whether the tool requires approval.
func (c *ToolConfig) NeedsApproval() bool {
	return c.RequireApproval != nil && *c.RequireApproval
}

// GetDefaultToolConfigs returns default local tool configurations.
// ToolConfigs.SetDefaults installs this set when no tools are configured.
// Tools marked with RequireApproval=true use HITL (Human-in-the-Loop) pattern
// and require user approval before execution.
func GetDefaultToolConfigs() map[string]*ToolConfig {
	return map[string]*ToolConfig{
		// Command execution tool - smart defaults set in SetDefaults()
		"execute_command": {
			Type:             ToolTypeCommand,
			Enabled:          BoolPtr(true),
			Description:      "Execute shell commands with security restrictions. Use for running scripts, build tools, package managers, etc.",
			WorkingDirectory: "./",
			MaxExecutionTime: "30s",
			// Note: SetDefaults() requires approval for command tools unless
			// require_approval is set explicitly
		},

		// File operation tools
		"read_file": {
			Type:        ToolTypeFunction,
			Handler:     "read_file",
			Enabled:     BoolPtr(true),
			Description: "Read the contents of a file with optional line numbers and range selection. Use to understand code structure and context before making edits.",
			// Safe operation - no approval needed
		},
		"write_file": {
			Type:        ToolTypeFunction,
			Handler:     "write_file",
			Enabled:     BoolPtr(true),
			Description: "Create a new file or overwrite an existing file with content. Supports backups and safety checks.",
			// Note: Approval defaults are set in SetDefaults() - requires approval by default
		},
		"search_replace": {
			Type:        ToolTypeFunction,
			Handler:     "search_replace",
			Enabled:     BoolPtr(true),
			Description: "Replace exact text in a file. Preserves formatting and indentation. Use for precise edits. Requires unique match unless replace_all=true.",
			// Note: Approval defaults are set in SetDefaults() - requires approval by default
		},
		"grep_search": {
			Type:        ToolTypeFunction,
			Handler:     "grep_search",
			Enabled:     BoolPtr(true),
			Description: "Search for patterns across files using regex. Use to find code references, function definitions, or text patterns.",
			// Safe operation - no approval needed
		},
	}
}
