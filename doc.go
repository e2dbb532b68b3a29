// Package nexo provides a config-first multi-agent orchestrator: a route
// selector picks between a direct answer, a ReAct loop, a fixed plan/code/
// review pipeline, or a DAG decomposition executed by a tiered parallel
// scheduler, depending on how complex the goal looks.
//
// # Quick Start
//
// Install the CLI:
//
//	go install github.com/technogeek-hash/nexo-ai-sub000/cmd/nexo@latest
//
// Run a goal directly with the zero-config default LLM provider (OpenAI,
// gpt-4o), whose API key is picked up from the environment:
//
//	export OPENAI_API_KEY=...
//	nexo run "add pagination to the users endpoint"
//
// Or describe the providers, tools, and per-domain overrides in YAML:
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
//
//	router:
//	  complexity_threshold: 50
//
//	nexo run --config my-orchestrator.yaml "refactor the billing package"
//
// # Using as a Go Library
//
//	import (
//	    "github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
//	    "github.com/technogeek-hash/nexo-ai-sub000/pkg/engine"
//	)
//
// # Architecture
//
// Goal -> router.SelectWithThreshold -> one of:
//
//	RouteSimple        one-shot ReAct turn
//	RouteStandard       planner -> coder -> reviewer ReAct turns in sequence
//	RouteFixedPipeline  the fixed 8-phase application-build pipeline
//	RouteDAG            decompose into a task graph, run on the tiered executor
//
// Every route shares the same agent catalog, tool registry, and model
// client; only the control flow around them differs.
package nexo
