// Package executor runs a reasoning.TaskGraph tier by tier: within a tier,
// tasks execute in bounded-parallelism batches, each on its own ReAct driver,
// with dependency results plumbed forward and one task's failure isolated
// from its siblings.
package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/agentcatalog"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/logger"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/reasoning"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

const (
	DefaultMaxParallel  = 4
	DefaultAgentTimeout = 120 * time.Second

	// dependencyContextCharLimit bounds how much of a dependency's response
	// text gets folded into a downstream task's prompt.
	dependencyContextCharLimit = 3000
)

// fileModifyingTools are the tool names whose successful calls are taken as
// evidence a file was written or edited.
var fileModifyingTools = map[string]bool{
	"write_file": true, "search_replace": true,
}

// SubTaskResult is the append-only outcome of running one SubTask. Results
// are shared read-only with later tiers via a flat taskId → result map.
type SubTaskResult struct {
	TaskID        string
	Domain        string
	Success       bool
	Response      string
	FilesModified []string
	ToolCallCount int
	Iterations    int
	Duration      time.Duration
	TokensUsed    int64
	Error         string
}

// Config tunes the executor's parallelism, per-agent timeout, and which
// domains' failures are considered critical to overall pipeline success.
type Config struct {
	MaxParallel int
	AgentTimeout time.Duration
	// CriticalDomains maps a domain to whether its failure should fail the
	// whole run. A domain absent from the map is critical by default;
	// DefaultConfig marks "docs" non-critical.
	CriticalDomains map[string]bool
}

func DefaultConfig() Config {
	return Config{
		MaxParallel:     DefaultMaxParallel,
		AgentTimeout:    DefaultAgentTimeout,
		CriticalDomains: map[string]bool{"docs": false},
	}
}

// Result is the outcome of running an entire TaskGraph to completion.
type Result struct {
	TaskResults  map[string]*SubTaskResult
	Success      bool
	PeakParallel int
}

// Executor runs a TaskGraph's tasks through the agent catalog's specialists.
type Executor struct {
	llmConfig *config.LLMProviderConfig
	catalog   *agentcatalog.Catalog
	registry  *tools.Registry
	cfg       Config
}

func New(llmConfig *config.LLMProviderConfig, catalog *agentcatalog.Catalog, registry *tools.Registry, cfg Config) *Executor {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = DefaultAgentTimeout
	}
	if cfg.CriticalDomains == nil {
		cfg.CriticalDomains = map[string]bool{"docs": false}
	}
	return &Executor{llmConfig: llmConfig, catalog: catalog, registry: registry, cfg: cfg}
}

// Run executes every task in graph, tier by tier in topological order, each
// tier split into batches of at most cfg.MaxParallel concurrent tasks ordered
// by descending priority within the tier.
func (e *Executor) Run(ctx context.Context, graph *reasoning.TaskGraph) *Result {
	results := make(map[string]*SubTaskResult, len(graph.Tasks))
	var mu sync.Mutex
	peakParallel := 0

	for _, tier := range graph.Tiers() {
		sortByPriorityDesc(tier)

		for start := 0; start < len(tier); start += e.cfg.MaxParallel {
			end := start + e.cfg.MaxParallel
			if end > len(tier) {
				end = len(tier)
			}
			batch := tier[start:end]
			if len(batch) > peakParallel {
				peakParallel = len(batch)
			}

			// errgroup only for goroutine lifecycle management here: every
			// worker always returns nil so one task's failure never cancels
			// gctx and never aborts its siblings in the same batch.
			g, gctx := errgroup.WithContext(ctx)
			for _, task := range batch {
				task := task
				g.Go(func() error {
					result := e.runTask(gctx, task, results, &mu)

					mu.Lock()
					results[task.ID] = result
					mu.Unlock()

					if t := graph.TaskByID(task.ID); t != nil {
						t.Status = statusFromResult(result)
					}
					return nil
				})
			}
			_ = g.Wait()
		}
	}

	return &Result{
		TaskResults:  results,
		Success:      e.isOverallSuccess(graph),
		PeakParallel: peakParallel,
	}
}

func statusFromResult(r *SubTaskResult) reasoning.SubTaskStatus {
	if strings.HasPrefix(r.Error, "Skipped:") {
		return reasoning.StatusSkipped
	}
	if r.Success {
		return reasoning.StatusCompleted
	}
	return reasoning.StatusFailed
}

// isOverallSuccess implements the success criterion: no non-skip failure in a
// critical domain. Skipped tasks (dependency-failure propagation) never fail
// the run on their own.
func (e *Executor) isOverallSuccess(graph *reasoning.TaskGraph) bool {
	for _, task := range graph.Tasks {
		if task.Status == reasoning.StatusFailed && e.isCritical(task.Domain) {
			return false
		}
	}
	return true
}

func (e *Executor) isCritical(domain string) bool {
	critical, explicit := e.cfg.CriticalDomains[domain]
	if !explicit {
		return true
	}
	return critical
}

// runTask runs a single SubTask: dependency-failure propagation, building the
// specialist's prompt and filtered tool set, running its ReAct driver under a
// combined cancellation handle, and recording the outcome.
func (e *Executor) runTask(ctx context.Context, task reasoning.SubTask, prior map[string]*SubTaskResult, mu *sync.Mutex) *SubTaskResult {
	start := time.Now()
	ctx = logger.WithTask(ctx, task.ID, task.Domain)
	log := logger.FromContext(ctx)

	mu.Lock()
	for _, dep := range task.Dependencies {
		if r, ok := prior[dep]; ok && !r.Success {
			mu.Unlock()
			log.Info("skipping task, dependency failed", "dependency", dep)
			return &SubTaskResult{
				TaskID: task.ID, Domain: task.Domain,
				Success: false, Error: "Skipped: dependency failed",
				Duration: time.Since(start),
			}
		}
	}
	mu.Unlock()

	spec, ok := e.catalog.GetByDomain(task.Domain)
	if !ok {
		return &SubTaskResult{
			TaskID: task.ID, Domain: task.Domain,
			Success: false, Error: fmt.Sprintf("no agent spec registered for domain %q", task.Domain),
			Duration: time.Since(start),
		}
	}

	taskCtx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout)
	defer cancel()

	client := llms.NewClient(e.llmConfig)
	driver := reasoning.NewDriver(client)

	allowedNames := agentcatalog.FilterTools(spec, e.registry.ToolNames())
	taskRegistry := e.registry.Subset(allowedNames)

	messages := e.buildMessages(task, spec, prior, mu)

	toolCallCount := 0
	iterations := 0
	var modifiedFiles []string
	sink := reasoning.FuncSink{
		Text: func(string) { iterations++ },
		ToolCall: func(c reasoning.ToolCallRequest) {
			toolCallCount++
			if fileModifyingTools[c.Tool] {
				if path, ok := c.Args["path"].(string); ok && path != "" {
					modifiedFiles = append(modifiedFiles, path)
				}
			}
		},
	}

	response, err := driver.Run(taskCtx, reasoning.RunOptions{
		Messages:      messages,
		Registry:      taskRegistry,
		MaxIterations: spec.MaxIterations,
		Sink:          sink,
	})

	result := &SubTaskResult{
		TaskID:        task.ID,
		Domain:        task.Domain,
		Response:      response,
		FilesModified: dedupeStrings(modifiedFiles),
		ToolCallCount: toolCallCount,
		Iterations:    iterations,
		Duration:      time.Since(start),
		TokensUsed:    client.TokensUsed(),
	}
	if err != nil {
		result.Error = err.Error()
		log.Warn("task failed", "error", err, "duration", result.Duration)
	} else {
		result.Success = true
		log.Info("task completed", "tool_calls", toolCallCount, "duration", result.Duration)
	}
	return result
}

func (e *Executor) buildMessages(task reasoning.SubTask, spec agentcatalog.AgentSpec, prior map[string]*SubTaskResult, mu *sync.Mutex) []llms.Message {
	messages := []llms.Message{{Role: "system", Content: spec.Instructions}}

	mu.Lock()
	var depContext strings.Builder
	for _, dep := range task.Dependencies {
		if r, ok := prior[dep]; ok {
			fmt.Fprintf(&depContext, "## Result from %s (%s)\n%s\n\n", dep, r.Domain, truncateText(r.Response, dependencyContextCharLimit))
		}
	}
	mu.Unlock()

	if depContext.Len() > 0 {
		messages = append(messages, llms.Message{Role: "system", Content: depContext.String()})
	}

	userContent := task.Description
	if len(task.RelevantFiles) > 0 {
		userContent += "\n\nRelevant files: " + strings.Join(task.RelevantFiles, ", ")
	}
	messages = append(messages, llms.Message{Role: "user", Content: userContent})

	return messages
}

func sortByPriorityDesc(tasks []reasoning.SubTask) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Priority > tasks[j].Priority })
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…(truncated)"
}

func dedupeStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
