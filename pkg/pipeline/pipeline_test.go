package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/agentcatalog"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

const fullStackArchitecture = `{"name": "taskly", "description": "a todo app", "features": ["todos"],
	"techStack": {"frontend": "react", "styling": "tailwind", "backend": "node", "database": "postgres", "orm": "prisma", "auth": "jwt", "deployment": "docker"},
	"directoryStructure": ["src/"], "apiContracts": ["GET /todos"], "dataModels": ["Todo"],
	"componentTree": ["App"], "envVars": ["DATABASE_URL"], "integrations": []}`

const staticSiteArchitecture = `{"name": "landing", "description": "a landing page",
	"techStack": {"frontend": "astro", "backend": "none"}}`

func newStubLLMConfig(t *testing.T, byContains map[string]string, fallback string) *config.LLMProviderConfig {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		content := fallback
		for _, m := range body.Messages {
			for substr, resp := range byContains {
				if strings.Contains(m.Content, substr) {
					content = resp
				}
			}
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": content}}},
			"usage":   map[string]int{"total_tokens": 5},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return &config.LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1}
}

type recordingSink struct {
	started []string
	done    []PhaseResult
}

func (s *recordingSink) OnPhaseStart(name string) { s.started = append(s.started, name) }
func (s *recordingSink) OnPhaseDone(result PhaseResult) { s.done = append(s.done, result) }

func TestPipeline_FullStackRunsAllEightPhases(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": fullStackArchitecture}, "done.")

	catalog := agentcatalog.New()
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	sink := &recordingSink{}
	result := p.Run(context.Background(), "build a todo app", sink)

	require.NotNil(t, result.Architecture)
	assert.Equal(t, "taskly", result.Architecture.Name)
	require.Len(t, result.Phases, 8, "architect + 7 app phases, backend included")
	assert.Equal(t, "architect", result.Phases[0].Name)
	assert.Equal(t, PhaseCompleted, result.Phases[0].Status)

	for _, ph := range result.Phases[1:] {
		assert.Equal(t, PhaseCompleted, ph.Status, "phase %s should complete", ph.Name)
	}
	assert.True(t, result.Success)

	assert.Contains(t, sink.started, "scaffold")
	assert.Contains(t, sink.started, "docs")
}

func TestPipeline_SkipsBackendWhenTechStackBackendIsNone(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": staticSiteArchitecture}, "done.")

	catalog := agentcatalog.New()
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	result := p.Run(context.Background(), "build a landing page", nil)

	var backendPhase *PhaseResult
	for i := range result.Phases {
		if result.Phases[i].Name == "backend" {
			backendPhase = &result.Phases[i]
		}
	}
	require.NotNil(t, backendPhase)
	assert.Equal(t, PhaseSkipped, backendPhase.Status)
}

func TestPipeline_PhaseFailureIsNonFatalAndContinues(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": fullStackArchitecture}, "done.")

	catalog := agentcatalog.New()
	require.NoError(t, catalog.Unregister("coder"))
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	result := p.Run(context.Background(), "build a todo app", nil)

	var scaffoldPhase, docsPhase *PhaseResult
	for i := range result.Phases {
		switch result.Phases[i].Name {
		case "scaffold":
			scaffoldPhase = &result.Phases[i]
		case "docs":
			docsPhase = &result.Phases[i]
		}
	}
	require.NotNil(t, scaffoldPhase)
	assert.Equal(t, PhaseFailed, scaffoldPhase.Status)
	require.NotNil(t, docsPhase, "pipeline must continue past the failed scaffold phase")
	assert.Equal(t, PhaseCompleted, docsPhase.Status)
	assert.False(t, result.Success, "scaffold/coder is a critical domain")
}

func TestPipeline_DocsFailureDoesNotFailOverallRun(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": fullStackArchitecture}, "done.")

	catalog := agentcatalog.New()
	require.NoError(t, catalog.Unregister("docs"))
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	result := p.Run(context.Background(), "build a todo app", nil)
	assert.True(t, result.Success, "docs is non-critical")
}

// cancelAfterArchitectSink cancels ctx the moment the architect phase
// reports done, simulating a caller cancellation landing exactly at the
// first phase boundary after architect succeeds.
type cancelAfterArchitectSink struct {
	cancel context.CancelFunc
}

func (s *cancelAfterArchitectSink) OnPhaseStart(string) {}
func (s *cancelAfterArchitectSink) OnPhaseDone(result PhaseResult) {
	if result.Name == "architect" {
		s.cancel()
	}
}

func TestPipeline_CancelledAtPhaseBoundaryReturnsPartialResult(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": fullStackArchitecture}, "done.")

	catalog := agentcatalog.New()
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancelAfterArchitectSink{cancel: cancel}

	result := p.Run(ctx, "build a todo app", sink)
	require.Len(t, result.Phases, 1, "only the architect phase should have run before cancellation was observed")
	assert.True(t, result.Cancelled)
	assert.False(t, result.Success)
}

func TestPipeline_ArchitectFailureAbortsPipeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	llmConfig := &config.LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1}

	catalog := agentcatalog.New()
	reg := tools.NewRegistry()
	p := New(llmConfig, catalog, reg)

	result := p.Run(context.Background(), "build a todo app", nil)
	require.Len(t, result.Phases, 1)
	assert.Equal(t, PhaseFailed, result.Phases[0].Status)
	assert.True(t, result.Aborted)
	assert.False(t, result.Success)
	assert.Nil(t, result.Architecture)
}
