// Package engine wires the route selector, ReAct driver, DAG decomposer and
// tiered executor, fixed pipeline, quality pipeline, and context assembler
// into the single entry point a caller drives a goal through.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/agentcatalog"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/contextassembler"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/executor"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/pipeline"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/quality"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/reasoning"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/router"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

// standardPhases is the standard route's fixed plan -> code -> review
// sequence, each phase a specialist ReAct driver turn fed the previous
// phase's response.
var standardPhases = []string{"planner", "coder", "reviewer"}

const simpleAssistantInstructions = "You are a helpful software engineering assistant. Answer directly; use tools only if the question requires inspecting the workspace."

// RunOptions carries per-request state the engine has no business owning:
// session identity, attachments, and editor state, all folded into the
// context assembler's block, plus the event sink the caller observes.
type RunOptions struct {
	SessionID       string
	WorkspaceRoot   string
	AttachmentPaths []string
	OpenEditors     []string
	Selection       string
	Sink            reasoning.EventSink
}

// RunResult is the union of every route's native result, plus a
// user-visible Summary per the engine's documented cancellation/failure
// presentation.
type RunResult struct {
	Route          router.Route
	Success        bool
	Cancelled      bool
	ResponseText   string
	Quality        *quality.Result
	Graph          *reasoning.TaskGraph
	ExecutorResult *executor.Result
	PipelineResult *pipeline.Result
	Summary        string
	Duration       time.Duration
}

// Engine is the top-level orchestrator. It is safe for concurrent Run calls:
// every call builds its own model client and ReAct drivers.
type Engine struct {
	llmConfig *config.LLMProviderConfig
	catalog   *agentcatalog.Catalog
	registry  *tools.Registry
	execCfg   executor.Config

	complexityThreshold int
	workspaceRoot       string
	memory        contextassembler.MemorySource
	rag           contextassembler.RAGSource
}

// New builds an Engine against a shared LLM config, agent catalog, and tool
// registry. Use the With* methods to attach the optional context-assembler
// adapters before the first Run.
func New(llmConfig *config.LLMProviderConfig, catalog *agentcatalog.Catalog, registry *tools.Registry) *Engine {
	return &Engine{
		llmConfig: llmConfig,
		catalog:   catalog,
		registry:  registry,
		execCfg:   executor.DefaultConfig(),
	}
}

func (e *Engine) WithWorkspaceRoot(root string) *Engine {
	e.workspaceRoot = root
	return e
}

func (e *Engine) WithMemory(m contextassembler.MemorySource) *Engine {
	e.memory = m
	return e
}

func (e *Engine) WithRAG(r contextassembler.RAGSource) *Engine {
	e.rag = r
	return e
}

func (e *Engine) WithExecutorConfig(cfg executor.Config) *Engine {
	e.execCfg = cfg
	return e
}

// WithComplexityThreshold overrides router.DefaultComplexityThreshold for
// this engine's DAG-route decision. A threshold <= 0 restores the default.
func (e *Engine) WithComplexityThreshold(threshold int) *Engine {
	e.complexityThreshold = threshold
	return e
}

// Run classifies goal, dispatches to the chosen route, and returns a unified
// result. It never panics; route-internal failures are captured in the
// returned RunResult the same way each subsystem already reports them.
func (e *Engine) Run(ctx context.Context, goal string, opts RunOptions) *RunResult {
	start := time.Now()
	route := router.SelectWithThreshold(goal, e.complexityThreshold)

	contextBlock, err := contextassembler.Assemble(ctx, contextassembler.Options{
		WorkspaceRoot:   opts.WorkspaceRoot,
		Goal:            goal,
		SessionID:       opts.SessionID,
		OpenEditors:     opts.OpenEditors,
		Selection:       opts.Selection,
		AttachmentPaths: opts.AttachmentPaths,
		Memory:          e.memory,
		RAG:             e.rag,
	})
	if err != nil {
		return &RunResult{
			Route:    route,
			Success:  false,
			Summary:  fmt.Sprintf("error: failed to assemble context: %v", err),
			Duration: time.Since(start),
		}
	}

	var result *RunResult
	switch route {
	case router.RouteFixedPipeline:
		result = e.runFixedPipeline(ctx, goal, opts.Sink)
	case router.RouteDAG:
		result = e.runDAG(ctx, goal)
	case router.RouteStandard:
		result = e.runStandard(ctx, goal, contextBlock, opts.Sink)
	default:
		result = e.runSimple(ctx, goal, contextBlock, opts.Sink)
	}

	result.Route = route
	result.Duration = time.Since(start)
	if result.Cancelled {
		result.Success = false
		result.Summary = "Operation cancelled."
	}
	return result
}

func (e *Engine) runSimple(ctx context.Context, goal, contextBlock string, sink reasoning.EventSink) *RunResult {
	if quality.MatchesCodeGenerationHeuristic(goal) {
		client := llms.NewClient(e.llmConfig)
		qr := quality.New(client).Run(ctx, goal)
		return &RunResult{
			Success:      qr.FinalText != "",
			ResponseText: qr.FinalText,
			Quality:      qr,
			Summary:      qualitySummary(qr),
		}
	}

	client := llms.NewClient(e.llmConfig)
	driver := reasoning.NewDriver(client)
	messages := []llms.Message{
		{Role: "system", Content: simpleAssistantInstructions + appendContext(contextBlock)},
		{Role: "user", Content: goal},
	}
	text, err := driver.Run(ctx, reasoning.RunOptions{
		Messages: messages, Registry: e.registry, MaxIterations: 3, Sink: sink,
	})
	if err != nil {
		if ctx.Err() != nil {
			return &RunResult{Cancelled: true, ResponseText: text}
		}
		return &RunResult{Success: false, ResponseText: text, Summary: fmt.Sprintf("error: %v", err)}
	}
	return &RunResult{Success: true, ResponseText: text, Summary: "done."}
}

func (e *Engine) runStandard(ctx context.Context, goal, contextBlock string, sink reasoning.EventSink) *RunResult {
	var lastResponse string
	var statuses []string

	for _, domain := range standardPhases {
		if err := ctx.Err(); err != nil {
			return &RunResult{Cancelled: true, ResponseText: lastResponse}
		}

		spec, ok := e.catalog.GetByDomain(domain)
		if !ok {
			statuses = append(statuses, fmt.Sprintf("✗ %s: no agent spec registered", domain))
			continue
		}

		client := llms.NewClient(e.llmConfig)
		driver := reasoning.NewDriver(client)
		allowed := agentcatalog.FilterTools(spec, e.registry.ToolNames())
		phaseRegistry := e.registry.Subset(allowed)

		userContent := goal
		if lastResponse != "" {
			userContent = fmt.Sprintf("Goal: %s\n\nPrevious specialist's output:\n%s", goal, lastResponse)
		}
		messages := []llms.Message{
			{Role: "system", Content: spec.Instructions + appendContext(contextBlock)},
			{Role: "user", Content: userContent},
		}

		text, err := driver.Run(ctx, reasoning.RunOptions{
			Messages: messages, Registry: phaseRegistry, MaxIterations: spec.MaxIterations, Sink: sink,
		})
		if err != nil {
			statuses = append(statuses, fmt.Sprintf("✗ %s: %v", domain, err))
			continue
		}
		lastResponse = text
		statuses = append(statuses, fmt.Sprintf("✓ %s", domain))
	}

	success := true
	for _, s := range statuses {
		if strings.HasPrefix(s, "✗") {
			success = false
		}
	}
	return &RunResult{Success: success, ResponseText: lastResponse, Summary: strings.Join(statuses, "\n")}
}

func (e *Engine) runDAG(ctx context.Context, goal string) *RunResult {
	client := llms.NewClient(e.llmConfig)
	graph := reasoning.NewDecomposer(client).Decompose(ctx, goal)

	exec := executor.New(e.llmConfig, e.catalog, e.registry, e.execCfg)
	execResult := exec.Run(ctx, graph)
	if err := ctx.Err(); err != nil {
		return &RunResult{Cancelled: true, Graph: graph, ExecutorResult: execResult}
	}

	return &RunResult{
		Success:        execResult.Success,
		Graph:          graph,
		ExecutorResult: execResult,
		Summary:        dagSummary(graph, execResult),
	}
}

func (e *Engine) runFixedPipeline(ctx context.Context, goal string, sink reasoning.EventSink) *RunResult {
	p := pipeline.New(e.llmConfig, e.catalog, e.registry)
	var ps pipeline.Sink = pipeline.NopSink{}
	if sink != nil {
		ps = &driverSinkAdapter{sink: sink}
	}
	result := p.Run(ctx, goal, ps)

	return &RunResult{
		Success:        result.Success,
		Cancelled:      result.Cancelled,
		PipelineResult: result,
		Summary:        pipelineSummary(result),
	}
}

// driverSinkAdapter forwards pipeline phase boundaries as status-shaped text
// events on the caller's reasoning.EventSink, so a caller only has to
// observe one sink type regardless of which route ran.
type driverSinkAdapter struct {
	sink reasoning.EventSink
}

func (a *driverSinkAdapter) OnPhaseStart(name string) {
	a.sink.OnText(fmt.Sprintf("starting phase: %s", name))
}

func (a *driverSinkAdapter) OnPhaseDone(result pipeline.PhaseResult) {
	a.sink.OnText(fmt.Sprintf("phase %s: %s", result.Name, result.Status))
}

func appendContext(contextBlock string) string {
	if contextBlock == "" {
		return ""
	}
	return "\n\n" + contextBlock
}

func qualitySummary(r *quality.Result) string {
	if r.FinalText == "" {
		return "error: no candidate survived generation"
	}
	if r.WasRewritten {
		return fmt.Sprintf("done. (rewritten, score %d/100)", r.FinalScore)
	}
	return fmt.Sprintf("done. (score %d/100)", r.FinalScore)
}

func dagSummary(graph *reasoning.TaskGraph, result *executor.Result) string {
	var lines []string
	for _, task := range graph.Tasks {
		r, ok := result.TaskResults[task.ID]
		mark := "✗"
		if ok && r.Success {
			mark = "✓"
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s)", mark, task.Title, task.Domain))
	}
	return strings.Join(lines, "\n")
}

func pipelineSummary(result *pipeline.Result) string {
	if result.Aborted {
		return fmt.Sprintf("error: architect phase failed: %s", result.Phases[0].Error)
	}
	var lines []string
	for _, ph := range result.Phases {
		mark := "✓"
		switch ph.Status {
		case pipeline.PhaseFailed:
			mark = "✗"
		case pipeline.PhaseSkipped:
			mark = "—"
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, ph.Name))
	}
	return strings.Join(lines, "\n")
}
