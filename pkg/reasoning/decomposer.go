package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
)

// knownDomains is the closed set of agent catalog domains the decomposer may
// assign a sub-task to. Any domain the model names outside this set falls
// back to "coder".
var knownDomains = map[string]bool{
	"planner": true, "coder": true, "reviewer": true, "security": true,
	"testing": true, "docs": true, "perf": true, "api": true,
	"migration": true, "db": true, "devops": true, "architect": true,
	"frontend": true, "backend": true,
}

const maxDecomposedTasks = 12

const decomposerSystemPromptTemplate = `You decompose a software engineering goal into a directed acyclic graph of sub-tasks, one per domain specialist.

Available domains: %s

Respond with JSON only, no prose, no markdown fences, matching exactly this shape:
{"tasks": [{"id": "string", "title": "string", "description": "string", "domain": "one of the available domains", "dependencies": ["id", ...], "complexity": 1-5, "priority": 0-100, "relevantFiles": ["path", ...]}]}

Rules:
- At most %d tasks.
- Every "id" must be unique and referenced only by tasks that genuinely depend on its output.
- "dependencies" may be empty.
- Output pure JSON and nothing else.`

// decomposerTaskJSON mirrors the decomposer's wire contract before validation
// promotes it to a SubTask.
type decomposerTaskJSON struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Domain        string   `json:"domain"`
	Dependencies  []string `json:"dependencies"`
	Complexity    int      `json:"complexity"`
	Priority      int      `json:"priority"`
	RelevantFiles []string `json:"relevantFiles"`
}

type decomposerResponseJSON struct {
	Tasks []decomposerTaskJSON `json:"tasks"`
}

// Decomposer turns a complex goal into a TaskGraph via a single low-temperature,
// JSON-only model call, falling back to a safe three-node graph on any failure.
type Decomposer struct {
	client *llms.Client
}

func NewDecomposer(client *llms.Client) *Decomposer {
	return &Decomposer{client: client}
}

// Decompose builds the system+user prompt, parses the model's response with
// lenientJSON, validates and cleans it, and returns a TaskGraph. It never
// returns an error: total failure yields fallbackGraph(goal).
func (d *Decomposer) Decompose(ctx context.Context, goal string) *TaskGraph {
	domains := make([]string, 0, len(knownDomains))
	for dom := range knownDomains {
		domains = append(domains, dom)
	}
	systemPrompt := fmt.Sprintf(decomposerSystemPromptTemplate, strings.Join(domains, ", "), maxDecomposedTasks)

	rawText, err := d.client.Complete(ctx, llms.CompletionOptions{
		Messages: []llms.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: goal},
		},
		Temperature: 0.2,
	})
	if err != nil {
		slog.Warn("decomposer model call failed, using fallback graph", "error", err)
		return fallbackGraph(goal)
	}

	var parsed decomposerResponseJSON
	if err := lenientJSON(rawText, &parsed); err != nil {
		slog.Warn("decomposer response failed to parse, using fallback graph", "error", err)
		return fallbackGraph(goal)
	}

	if len(parsed.Tasks) == 0 {
		slog.Warn("decomposer returned zero tasks, using fallback graph")
		return fallbackGraph(goal)
	}

	if len(parsed.Tasks) > maxDecomposedTasks {
		parsed.Tasks = parsed.Tasks[:maxDecomposedTasks]
	}

	seenIDs := make(map[string]bool, len(parsed.Tasks))
	tasks := make([]SubTask, 0, len(parsed.Tasks))
	for _, raw := range parsed.Tasks {
		if raw.ID == "" || raw.Title == "" || raw.Description == "" || raw.Domain == "" {
			slog.Warn("decomposer task missing a required field, dropping", "id", raw.ID)
			continue
		}
		if seenIDs[raw.ID] {
			slog.Warn("decomposer task has duplicate id, dropping", "id", raw.ID)
			continue
		}
		seenIDs[raw.ID] = true

		domain := raw.Domain
		if !knownDomains[domain] {
			slog.Warn("decomposer task has unknown domain, defaulting to coder", "id", raw.ID, "domain", domain)
			domain = "coder"
		}

		complexity := raw.Complexity
		if complexity < 1 {
			complexity = 1
		} else if complexity > 5 {
			complexity = 5
		}

		priority := raw.Priority
		if priority <= 0 {
			priority = 50
		}

		tasks = append(tasks, SubTask{
			ID:            raw.ID,
			Title:         raw.Title,
			Description:   raw.Description,
			Domain:        domain,
			Dependencies:  raw.Dependencies,
			Status:        StatusPending,
			RelevantFiles: raw.RelevantFiles,
			Priority:      priority,
			Complexity:    complexity,
		})
	}

	if len(tasks) == 0 {
		slog.Warn("no valid tasks survived decomposer validation, using fallback graph")
		return fallbackGraph(goal)
	}

	return BuildGraph(goal, tasks)
}
