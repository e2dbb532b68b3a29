package reasoning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
)

func newDecomposerTestClient(t *testing.T, content string) *llms.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
			"usage": map[string]int{"total_tokens": 10},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return llms.NewClient(&config.LLMProviderConfig{
		Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1,
	})
}

func TestDecomposer_ValidResponse(t *testing.T) {
	content := `{"tasks": [
		{"id": "t1", "title": "Design schema", "description": "Design the db schema", "domain": "db", "dependencies": [], "complexity": 2, "priority": 80},
		{"id": "t2", "title": "Implement API", "description": "Build the API", "domain": "api", "dependencies": ["t1"], "complexity": 3, "priority": 60}
	]}`
	client := newDecomposerTestClient(t, content)
	g := NewDecomposer(client).Decompose(context.Background(), "build a service")

	require.Len(t, g.Tasks, 2)
	assert.Equal(t, "db", g.TaskByID("t1").Domain)
	assert.Equal(t, []string{"t2"}, g.Edges["t1"])
}

func TestDecomposer_UnknownDomainFallsBackToCoder(t *testing.T) {
	content := `{"tasks": [{"id": "t1", "title": "Do it", "description": "desc", "domain": "astrology", "dependencies": []}]}`
	client := newDecomposerTestClient(t, content)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 1)
	assert.Equal(t, "coder", g.Tasks[0].Domain)
}

func TestDecomposer_ComplexityClampedAndPriorityDefaulted(t *testing.T) {
	content := `{"tasks": [{"id": "t1", "title": "x", "description": "y", "domain": "coder", "complexity": 99}]}`
	client := newDecomposerTestClient(t, content)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 1)
	assert.Equal(t, 5, g.Tasks[0].Complexity)
	assert.Equal(t, 50, g.Tasks[0].Priority)
}

func TestDecomposer_MissingRequiredFieldDropped(t *testing.T) {
	content := `{"tasks": [{"id": "t1", "title": "", "description": "y", "domain": "coder"}]}`
	client := newDecomposerTestClient(t, content)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 3)
	assert.Equal(t, "plan", g.Tasks[0].ID)
}

func TestDecomposer_ZeroTasksFallsBack(t *testing.T) {
	client := newDecomposerTestClient(t, `{"tasks": []}`)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 3)
}

func TestDecomposer_MalformedJSONFallsBack(t *testing.T) {
	client := newDecomposerTestClient(t, `not json at all`)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 3)
}

func TestDecomposer_CodeFencedResponseParses(t *testing.T) {
	content := "```json\n{\"tasks\": [{\"id\": \"t1\", \"title\": \"x\", \"description\": \"y\", \"domain\": \"coder\"}]}\n```"
	client := newDecomposerTestClient(t, content)
	g := NewDecomposer(client).Decompose(context.Background(), "goal")

	require.Len(t, g.Tasks, 1)
	assert.Equal(t, "t1", g.Tasks[0].ID)
}
