// Package pipeline implements the fixed eight-phase app-creation sequence:
// architect, scaffold, backend, frontend, testing, security, devops, docs.
// Unlike the tiered executor, phases run strictly in order. A failure in any
// phase after architect never aborts the run — it is logged and the pipeline
// moves on; an architect failure stops the pipeline (see Result.Aborted).
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/agentcatalog"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/reasoning"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

const DefaultPhaseTimeout = 180 * time.Second

// PhaseStatus is the terminal state of one pipeline phase.
type PhaseStatus string

const (
	PhaseCompleted PhaseStatus = "completed"
	PhaseFailed    PhaseStatus = "failed"
	PhaseSkipped   PhaseStatus = "skipped"
	PhaseCancelled PhaseStatus = "cancelled"
)

// PhaseResult is the outcome of running one phase of the pipeline.
type PhaseResult struct {
	Name         string
	Domain       string
	Status       PhaseStatus
	Response     string
	FilesCreated []string
	Duration     time.Duration
	Error        string
}

// Result is the outcome of running the whole fixed pipeline.
type Result struct {
	Architecture *reasoning.ArchitectureSpec
	Phases       []PhaseResult
	Success      bool
	Cancelled    bool
	// Aborted is set when the architect phase itself fails. Unlike every
	// later phase, architect failure has no safe default to proceed with, so
	// the pipeline stops immediately rather than attempting phases 2-8
	// against a nil ArchitectureSpec.
	Aborted bool
}

// Sink receives phase-boundary notifications. OnPhaseStart fires once per
// non-skipped phase before it runs; OnPhaseDone fires once per phase
// (skipped, cancelled, completed, or failed) after its outcome is known.
type Sink interface {
	OnPhaseStart(name string)
	OnPhaseDone(result PhaseResult)
}

type NopSink struct{}

func (NopSink) OnPhaseStart(string)      {}
func (NopSink) OnPhaseDone(PhaseResult) {}

// fileReportTools are the tool names whose successful reports count toward a
// phase's FilesCreated list. delete_file is deliberately excluded: deleting a
// file isn't "creating" one.
var fileReportTools = map[string]bool{"write_file": true, "edit_file": true}

// fileReportPattern extracts the path out of a successful write_file/edit_file
// tool report line built by runPhase's sink (see buildReportLine below).
var fileReportPattern = regexp.MustCompile(`tool="(?:write_file|edit_file)" path="([^"]*)" success="true"`)

type phaseSpec struct {
	name   string
	domain string
	prompt func(*reasoning.ArchitectureSpec) string
}

var appPhases = []phaseSpec{
	{name: "scaffold", domain: "coder", prompt: scaffoldPrompt},
	{name: "backend", domain: "backend", prompt: backendPrompt},
	{name: "frontend", domain: "frontend", prompt: frontendPrompt},
	{name: "testing", domain: "testing", prompt: testingPrompt},
	{name: "security", domain: "security", prompt: securityPrompt},
	{name: "devops", domain: "devops", prompt: devopsPrompt},
	{name: "docs", domain: "docs", prompt: docsPrompt},
}

// Pipeline runs the fixed eight-phase sequence against a fresh llms.Client
// and ReAct driver per phase.
type Pipeline struct {
	llmConfig       *config.LLMProviderConfig
	catalog         *agentcatalog.Catalog
	registry        *tools.Registry
	phaseTimeout    time.Duration
	criticalDomains map[string]bool
}

func New(llmConfig *config.LLMProviderConfig, catalog *agentcatalog.Catalog, registry *tools.Registry) *Pipeline {
	return &Pipeline{
		llmConfig:       llmConfig,
		catalog:         catalog,
		registry:        registry,
		phaseTimeout:    DefaultPhaseTimeout,
		criticalDomains: map[string]bool{"docs": false},
	}
}

// Run executes the architect phase followed by the seven app-creation
// phases in fixed order. It never returns an error: every failure mode is
// captured in the returned Result.
func (p *Pipeline) Run(ctx context.Context, goal string, sink Sink) *Result {
	if sink == nil {
		sink = NopSink{}
	}
	result := &Result{}

	sink.OnPhaseStart("architect")
	archStart := time.Now()
	architectClient := llms.NewClient(p.llmConfig)
	spec, err := reasoning.NewArchitect(architectClient).Design(ctx, goal)
	if err != nil {
		archResult := PhaseResult{Name: "architect", Domain: "architect", Status: PhaseFailed, Error: err.Error(), Duration: time.Since(archStart)}
		result.Phases = append(result.Phases, archResult)
		result.Aborted = true
		sink.OnPhaseDone(archResult)
		slog.Warn("architect phase failed, aborting fixed pipeline", "error", err)
		return result
	}
	result.Architecture = spec

	archResult := PhaseResult{Name: "architect", Domain: "architect", Status: PhaseCompleted, Duration: time.Since(archStart)}
	result.Phases = append(result.Phases, archResult)
	sink.OnPhaseDone(archResult)

	for _, ph := range appPhases {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			slog.Warn("fixed pipeline cancelled at phase boundary", "phase", ph.name)
			break
		}

		if ph.name == "backend" && spec.TechStack.Backend == "none" {
			pr := PhaseResult{Name: ph.name, Domain: ph.domain, Status: PhaseSkipped}
			result.Phases = append(result.Phases, pr)
			sink.OnPhaseDone(pr)
			continue
		}

		sink.OnPhaseStart(ph.name)
		pr := p.runPhase(ctx, ph, goal, spec)
		if pr.Status == PhaseFailed {
			slog.Warn("pipeline phase failed, continuing to next phase", "phase", ph.name, "error", pr.Error)
		}
		result.Phases = append(result.Phases, pr)
		sink.OnPhaseDone(pr)
	}

	result.Success = !result.Cancelled && p.isOverallSuccess(result.Phases)
	return result
}

func (p *Pipeline) isOverallSuccess(phases []PhaseResult) bool {
	for _, ph := range phases {
		if ph.Status != PhaseFailed {
			continue
		}
		critical, explicit := p.criticalDomains[ph.Domain]
		if !explicit || critical {
			return false
		}
	}
	return true
}

func (p *Pipeline) runPhase(ctx context.Context, ph phaseSpec, goal string, spec *reasoning.ArchitectureSpec) PhaseResult {
	start := time.Now()

	agentSpec, ok := p.catalog.GetByDomain(ph.domain)
	if !ok {
		return PhaseResult{
			Name: ph.name, Domain: ph.domain, Status: PhaseFailed,
			Error: fmt.Sprintf("no agent spec registered for domain %q", ph.domain), Duration: time.Since(start),
		}
	}

	phaseCtx, cancel := context.WithTimeout(ctx, p.phaseTimeout)
	defer cancel()

	client := llms.NewClient(p.llmConfig)
	driver := reasoning.NewDriver(client)

	allowedNames := agentcatalog.FilterTools(agentSpec, p.registry.ToolNames())
	phaseRegistry := p.registry.Subset(allowedNames)

	messages := []llms.Message{
		{Role: "system", Content: agentSpec.Instructions},
		{Role: "user", Content: ph.prompt(spec)},
	}

	var reportLog strings.Builder
	var pendingTool, pendingPath string
	sink := reasoning.FuncSink{
		ToolCall: func(call reasoning.ToolCallRequest) {
			pendingTool = call.Tool
			pendingPath, _ = call.Args["path"].(string)
		},
		ToolResult: func(r reasoning.ToolResultEvent) {
			if fileReportTools[pendingTool] {
				fmt.Fprintf(&reportLog, "tool=%q path=%q success=%q\n", pendingTool, pendingPath, successLabel(r.Success))
			}
			pendingTool, pendingPath = "", ""
		},
	}

	response, err := driver.Run(phaseCtx, reasoning.RunOptions{
		Messages:      messages,
		Registry:      phaseRegistry,
		MaxIterations: agentSpec.MaxIterations,
		Sink:          sink,
	})

	result := PhaseResult{
		Name:         ph.name,
		Domain:       ph.domain,
		Response:     response,
		FilesCreated: extractFilesCreated(reportLog.String()),
		Duration:     time.Since(start),
	}
	if err != nil {
		result.Status = PhaseFailed
		result.Error = err.Error()
	} else {
		result.Status = PhaseCompleted
	}
	return result
}

// extractFilesCreated regex-extracts the path out of every successful
// write_file/edit_file report line runPhase built from the driver's tool
// call/result events, mirroring the wire-level report the driver itself
// would emit rather than reading the tool call's structured args directly.
func extractFilesCreated(reportLog string) []string {
	matches := fileReportPattern.FindAllStringSubmatch(reportLog, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var files []string
	for _, m := range matches {
		path := m[1]
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}

func successLabel(success bool) string {
	if success {
		return "true"
	}
	return "false"
}

func scaffoldPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Scaffold the project %q: %s\n\nTech stack: frontend=%s, backend=%s, database=%s.\nDirectory structure to create:\n%s",
		spec.Name, spec.Description, spec.TechStack.Frontend, spec.TechStack.Backend, spec.TechStack.Database,
		strings.Join(spec.DirectoryStructure, "\n"),
	)
}

func backendPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Implement the backend for %q using %s, database %s via %s, auth %s.\n\nAPI contracts:\n%s\n\nData models:\n%s",
		spec.Name, spec.TechStack.Backend, spec.TechStack.Database, spec.TechStack.ORM, spec.TechStack.Auth,
		strings.Join(spec.APIContracts, "\n"), strings.Join(spec.DataModels, "\n"),
	)
}

func frontendPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Implement the frontend for %q using %s styled with %s.\n\nComponent tree:\n%s\n\nFeatures:\n%s",
		spec.Name, spec.TechStack.Frontend, spec.TechStack.Styling,
		strings.Join(spec.ComponentTree, "\n"), strings.Join(spec.Features, "\n"),
	)
}

func testingPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Write tests covering the backend and frontend implementation of %q.\n\nFeatures to cover:\n%s",
		spec.Name, strings.Join(spec.Features, "\n"),
	)
}

func securityPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Audit %q for security issues. Auth mechanism: %s. Environment variables in use:\n%s",
		spec.Name, spec.TechStack.Auth, strings.Join(spec.EnvVars, "\n"),
	)
}

func devopsPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Set up build and deployment configuration for %q. Deployment target: %s. Environment variables to wire:\n%s\n\nIntegrations:\n%s",
		spec.Name, spec.TechStack.Deployment, strings.Join(spec.EnvVars, "\n"), strings.Join(spec.Integrations, "\n"),
	)
}

func docsPrompt(spec *reasoning.ArchitectureSpec) string {
	return fmt.Sprintf(
		"Write documentation for %q: %s\n\nFeatures:\n%s",
		spec.Name, spec.Description, strings.Join(spec.Features, "\n"),
	)
}
