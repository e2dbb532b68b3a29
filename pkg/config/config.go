// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration loading and management for the
// orchestrator.
//
// The orchestrator is config-first: LLM providers, the tool catalog, and
// per-domain agent overrides are defined in YAML and the runtime builds them
// automatically.
//
// Example config:
//
//	version: "1"
//	name: my-orchestrator
//
//	llms:
//	  default:
//	    type: anthropic
//	    model: claude-sonnet-4-20250514
//	    api_key: ${ANTHROPIC_API_KEY}
//
//	tools:
//	  execute_command:
//	    type: command
//	    allowed_commands: [go, git, ls, cat]
//
//	router:
//	  complexity_threshold: 50
//
//	agents:
//	  coder:
//	    instructions: Implement the assigned task directly, no commentary.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure.
type Config struct {
	// Version of the config schema (e.g., "1").
	Version string `yaml:"version,omitempty"`

	// Name of this configuration (for logging/display).
	Name string `yaml:"name,omitempty"`

	// Description of this configuration.
	Description string `yaml:"description,omitempty"`

	// LLMs defines available LLM providers, keyed by name. The engine's
	// model client is built from whichever entry Defaults.LLM names (or
	// "default" if Defaults is empty).
	LLMs map[string]*LLMProviderConfig `yaml:"llms,omitempty"`

	// Tools lists the enabled tools and their per-tool settings.
	Tools ToolConfigs `yaml:"tools,omitempty"`

	// Agents overrides built-in specialist specs by domain. A domain absent
	// here keeps its built-in instructions and limits unchanged.
	Agents map[string]*AgentOverride `yaml:"agents,omitempty"`

	// Router tunes the route selector's DAG-route threshold.
	Router RouterConfig `yaml:"router,omitempty"`

	// Executor tunes the tiered parallel executor's concurrency and timeouts.
	Executor ExecutorConfig `yaml:"executor,omitempty"`

	// Logging configures the ambient slog-based logger.
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// Defaults provides default references used when a section is silent on
	// which named entry to use.
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
}

// AgentOverride replaces part of a built-in specialist's spec for its
// domain. Fields left zero keep the built-in value; a Register call in the
// loading layer merges this onto the matching agentcatalog.AgentSpec.
type AgentOverride struct {
	Instructions  string   `yaml:"instructions,omitempty"`
	AllowedTools  []string `yaml:"allowed_tools,omitempty"`
	MaxIterations int      `yaml:"max_iterations,omitempty"`
	Priority      int      `yaml:"priority,omitempty"`
	TokenBudget   int      `yaml:"token_budget,omitempty"`
}

// RouterConfig overrides the route selector's DAG-route threshold.
type RouterConfig struct {
	// ComplexityThreshold overrides router.DefaultComplexityThreshold. Zero
	// means use the router's built-in default.
	ComplexityThreshold int `yaml:"complexity_threshold,omitempty"`
}

// ExecutorConfig overrides the tiered parallel executor's defaults.
type ExecutorConfig struct {
	MaxParallel     int             `yaml:"max_parallel,omitempty"`
	AgentTimeout    string          `yaml:"agent_timeout,omitempty"`
	CriticalDomains map[string]bool `yaml:"critical_domains,omitempty"`
}

// LoggingConfig configures pkg/logger.Init. Level and Format are plain
// strings here (mirroring the YAML surface); the loading layer translates
// Level via logger.ParseLevel before calling Init.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, color, json
	Path   string `yaml:"path,omitempty"`   // log file path; empty means stderr
}

// SetDefaults applies default values to LoggingConfig.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "color"
	}
}

// DefaultsConfig provides default references used when a section doesn't
// name one explicitly.
type DefaultsConfig struct {
	// LLM is the default LLM reference for the engine's model client.
	LLM string `yaml:"llm,omitempty"`
}

// SetDefaults applies default values to the config, in place.
func (c *Config) SetDefaults() {
	if c.LLMs == nil {
		c.LLMs = make(map[string]*LLMProviderConfig)
	}
	if c.Agents == nil {
		c.Agents = make(map[string]*AgentOverride)
	}

	if len(c.LLMs) == 0 {
		c.LLMs["default"] = &LLMProviderConfig{}
	}
	if c.Defaults.LLM == "" {
		if _, ok := c.LLMs["default"]; ok {
			c.Defaults.LLM = "default"
		} else {
			for name := range c.LLMs {
				c.Defaults.LLM = name
				break
			}
		}
	}

	for _, llm := range c.LLMs {
		llm.SetDefaults()
	}

	c.Tools.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks the configuration for consistency, aggregating every
// section's errors rather than stopping at the first one.
func (c *Config) Validate() error {
	var errs []string

	for name, llm := range c.LLMs {
		if err := llm.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("llm '%s': %v", name, err))
		}
	}

	if err := c.Tools.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Defaults.LLM != "" {
		if _, ok := c.LLMs[c.Defaults.LLM]; !ok {
			errs = append(errs, fmt.Sprintf("defaults.llm '%s' is not defined in llms", c.Defaults.LLM))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// GetLLM returns the named LLM provider config.
func (c *Config) GetLLM(name string) (*LLMProviderConfig, bool) {
	llm, ok := c.LLMs[name]
	return llm, ok
}

// DefaultLLM returns the LLM provider config named by Defaults.LLM, falling
// back to an entry named "default" if Defaults.LLM is unset.
func (c *Config) DefaultLLM() (*LLMProviderConfig, bool) {
	name := c.Defaults.LLM
	if name == "" {
		name = "default"
	}
	return c.GetLLM(name)
}

// ListAgentOverrides returns the domains with a configured AgentOverride.
func (c *Config) ListAgentOverrides() []string {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	return names
}
