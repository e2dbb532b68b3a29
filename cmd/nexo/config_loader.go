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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/agentcatalog"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/engine"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/executor"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

// loadConfig loads and validates the config file at path, or returns a
// zero-config Config (a single default LLM provider, default tool set) if
// path is empty.
func loadConfig(ctx context.Context, path string) (*config.Config, *config.Loader, error) {
	if path == "" {
		cfg := &config.Config{}
		cfg.SetDefaults()
		return cfg, nil, nil
	}

	_ = config.LoadEnvFiles()
	cfg, loader, err := config.LoadConfigFile(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, loader, nil
}

// buildEngine wires a loaded Config into a ready-to-run Engine: the default
// LLM provider, a tool registry populated from the config's tool section, an
// agent catalog with any configured overrides applied on top of the
// built-ins, and the router/executor tuning knobs.
func buildEngine(ctx context.Context, cfg *config.Config, workspaceRoot string) (*engine.Engine, error) {
	llmCfg, ok := cfg.DefaultLLM()
	if !ok {
		return nil, fmt.Errorf("no default LLM provider configured")
	}

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog := buildCatalog(cfg)

	execCfg := executor.DefaultConfig()
	if cfg.Executor.MaxParallel > 0 {
		execCfg.MaxParallel = cfg.Executor.MaxParallel
	}
	if cfg.Executor.AgentTimeout != "" {
		if d, err := time.ParseDuration(cfg.Executor.AgentTimeout); err == nil {
			execCfg.AgentTimeout = d
		}
	}
	if len(cfg.Executor.CriticalDomains) > 0 {
		execCfg.CriticalDomains = cfg.Executor.CriticalDomains
	}

	e := engine.New(llmCfg, catalog, registry).
		WithWorkspaceRoot(workspaceRoot).
		WithExecutorConfig(execCfg).
		WithComplexityThreshold(cfg.Router.ComplexityThreshold)

	return e, nil
}

// buildRegistry constructs the tool registry from the config's local and MCP
// tool entries. A tool entry whose Type is mcp is registered as its own
// source; every other entry goes through the shared local-tool source.
func buildRegistry(ctx context.Context, cfg *config.Config) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	localConfigs := make(map[string]*config.ToolConfig)
	for name, toolCfg := range cfg.Tools.Tools {
		if toolCfg.Type == config.ToolTypeMCP {
			src, err := tools.NewMCPToolSourceWithConfig(&toolCfg)
			if err != nil {
				return nil, fmt.Errorf("tool %q: %w", name, err)
			}
			if err := registry.RegisterSource(ctx, src); err != nil {
				return nil, fmt.Errorf("tool %q: %w", name, err)
			}
			continue
		}
		localConfigs[name] = &toolCfg
	}

	if len(localConfigs) > 0 {
		src, err := tools.NewLocalToolSourceWithConfig(localConfigs)
		if err != nil {
			return nil, fmt.Errorf("local tools: %w", err)
		}
		if err := registry.RegisterSource(ctx, src); err != nil {
			return nil, fmt.Errorf("local tools: %w", err)
		}
	}

	return registry, nil
}

// buildCatalog starts from the built-in specialists and applies any
// per-domain AgentOverride on top, merging only the fields the override sets.
func buildCatalog(cfg *config.Config) *agentcatalog.Catalog {
	catalog := agentcatalog.New()

	for domain, override := range cfg.Agents {
		spec, ok := catalog.GetByDomain(domain)
		if !ok {
			spec = agentcatalog.AgentSpec{ID: domain, DisplayName: domain, Domain: domain}
		}
		if override.Instructions != "" {
			spec.Instructions = override.Instructions
		}
		if len(override.AllowedTools) > 0 {
			spec.AllowedTools = override.AllowedTools
		}
		if override.MaxIterations > 0 {
			spec.MaxIterations = override.MaxIterations
		}
		if override.Priority > 0 {
			spec.Priority = override.Priority
		}
		if override.TokenBudget > 0 {
			spec.TokenBudget = override.TokenBudget
		}
		_ = catalog.Register(spec)
	}

	return catalog
}
