package reasoning

import (
	"context"
	"fmt"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
)

// TechStack is the architect's chosen technology selection for each layer of
// the application. "none" in Backend means phase 3 of the fixed pipeline is
// skipped entirely.
type TechStack struct {
	Frontend   string `json:"frontend"`
	Styling    string `json:"styling"`
	Backend    string `json:"backend"`
	Database   string `json:"database"`
	ORM        string `json:"orm"`
	Auth       string `json:"auth"`
	Deployment string `json:"deployment"`
}

// ArchitectureSpec is the architect phase's JSON output, normalized with
// defaults for every optional field the model omits.
type ArchitectureSpec struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Features           []string  `json:"features"`
	TechStack          TechStack `json:"techStack"`
	DirectoryStructure []string  `json:"directoryStructure"`
	APIContracts       []string  `json:"apiContracts"`
	DataModels         []string  `json:"dataModels"`
	ComponentTree      []string  `json:"componentTree"`
	EnvVars            []string  `json:"envVars"`
	Integrations       []string  `json:"integrations"`
}

const architectSystemPrompt = `You are a software architect. Given an application goal, respond with JSON only, no prose, no markdown fences, matching exactly this shape:
{"name": "string", "description": "string", "features": ["string"], "techStack": {"frontend": "string", "styling": "string", "backend": "string", "database": "string", "orm": "string", "auth": "string", "deployment": "string"}, "directoryStructure": ["string"], "apiContracts": ["string"], "dataModels": ["string"], "componentTree": ["string"], "envVars": ["string"], "integrations": ["string"]}

Use "none" for any techStack field that does not apply (for example backend="none" for a static site). Output pure JSON and nothing else.`

// Architect runs the fixed pipeline's phase 1: a single non-streaming model
// call producing an ArchitectureSpec.
type Architect struct {
	client *llms.Client
}

func NewArchitect(client *llms.Client) *Architect {
	return &Architect{client: client}
}

// Design builds the architecture for goal. Unlike the decomposer, the
// architect has no safe fallback graph to fall back to: a response that
// fails to parse, or that is missing a required field (name or techStack),
// is a hard failure that the caller must abort the pipeline on. A response
// that parses but omits a genuinely optional field (componentTree, envVars,
// integrations, or the techStack backend, database, auth or deployment
// entry) is normalized with a default instead: an empty list, or "none".
func (a *Architect) Design(ctx context.Context, goal string) (*ArchitectureSpec, error) {
	rawText, err := a.client.Complete(ctx, llms.CompletionOptions{
		Messages: []llms.Message{
			{Role: "system", Content: architectSystemPrompt},
			{Role: "user", Content: goal},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("architect model call failed: %w", err)
	}

	var spec ArchitectureSpec
	if err := lenientJSON(rawText, &spec); err != nil {
		return nil, fmt.Errorf("architect response failed to parse: %w", err)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("architect response missing required field \"name\"")
	}
	if spec.TechStack == (TechStack{}) {
		return nil, fmt.Errorf("architect response missing required field \"techStack\"")
	}

	normalizeArchitectureSpec(&spec)
	return &spec, nil
}

func normalizeArchitectureSpec(spec *ArchitectureSpec) {
	if spec.TechStack.Backend == "" {
		spec.TechStack.Backend = "none"
	}
	if spec.TechStack.Database == "" {
		spec.TechStack.Database = "none"
	}
	if spec.TechStack.Auth == "" {
		spec.TechStack.Auth = "none"
	}
	if spec.TechStack.Deployment == "" {
		spec.TechStack.Deployment = "none"
	}
	if spec.ComponentTree == nil {
		spec.ComponentTree = []string{}
	}
	if spec.EnvVars == nil {
		spec.EnvVars = []string{}
	}
	if spec.Integrations == nil {
		spec.Integrations = []string{}
	}
}
