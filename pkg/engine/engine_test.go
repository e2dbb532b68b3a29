package engine

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
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/router"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

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

func TestEngine_SimpleRouteAnswersDirectly(t *testing.T) {
	llmConfig := newStubLLMConfig(t, nil, "The capital of France is Paris.")
	e := New(llmConfig, agentcatalog.New(), tools.NewRegistry())

	result := e.Run(context.Background(), "what is the capital of France", RunOptions{})
	assert.Equal(t, router.RouteSimple, result.Route)
	assert.True(t, result.Success)
	assert.Contains(t, result.ResponseText, "Paris")
}

func TestEngine_StandardRouteRunsPlannerCoderReviewerInSequence(t *testing.T) {
	llmConfig := newStubLLMConfig(t, map[string]string{
		"Break the goal into": "1. add a handler\n2. add a test",
		"Implement the assigned task": "added handler.go",
		"Review the work":             "looks good",
	}, "done.")
	e := New(llmConfig, agentcatalog.New(), tools.NewRegistry())

	result := e.Run(context.Background(), "fix the bug in the payment handler", RunOptions{})
	require.Equal(t, router.RouteStandard, result.Route)
	assert.True(t, result.Success)
	assert.Contains(t, result.ResponseText, "looks good")
	assert.Contains(t, result.Summary, "✓ planner")
	assert.Contains(t, result.Summary, "✓ reviewer")
}

func TestEngine_FixedPipelineRouteForAppCreation(t *testing.T) {
	arch := `{"name": "taskly", "description": "a todo app", "features": ["todos"],
		"techStack": {"frontend": "react", "styling": "tailwind", "backend": "none", "database": "none", "orm": "none", "auth": "none", "deployment": "none"}}`
	llmConfig := newStubLLMConfig(t, map[string]string{"software architect": arch}, "done.")
	e := New(llmConfig, agentcatalog.New(), tools.NewRegistry())

	result := e.Run(context.Background(), "build a todo app with authentication, real-time sync, and notifications", RunOptions{})
	require.Equal(t, router.RouteFixedPipeline, result.Route)
	require.NotNil(t, result.PipelineResult)
	assert.True(t, result.Success)
	assert.Contains(t, result.Summary, "✓ architect")
}

func TestEngine_DAGRouteForComplexGoal(t *testing.T) {
	dag := `{"tasks": [
		{"id": "t1", "title": "design schema", "description": "design the schema", "domain": "db", "dependencies": [], "complexity": 3, "priority": 80},
		{"id": "t2", "title": "implement api", "description": "implement the api", "domain": "api", "dependencies": ["t1"], "complexity": 3, "priority": 70}
	]}`
	llmConfig := newStubLLMConfig(t, map[string]string{"decompose a software": dag}, "done.")
	e := New(llmConfig, agentcatalog.New(), tools.NewRegistry())

	goal := "production microservice migration across the codebase: database schema, api, security audit, performance optimization, and full-stack testing"
	result := e.Run(context.Background(), goal, RunOptions{})
	require.Equal(t, router.RouteDAG, result.Route)
	require.NotNil(t, result.Graph)
	require.NotNil(t, result.ExecutorResult)
	assert.Len(t, result.Graph.Tasks, 2)
}

func TestEngine_CancelledContextYieldsCancelledSummary(t *testing.T) {
	llmConfig := newStubLLMConfig(t, nil, "done.")
	e := New(llmConfig, agentcatalog.New(), tools.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := e.Run(ctx, "what is the capital of France", RunOptions{})
	assert.False(t, result.Success)
	assert.Equal(t, "Operation cancelled.", result.Summary)
}
