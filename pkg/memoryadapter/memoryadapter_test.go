package memoryadapter

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

func newStubClient(t *testing.T, content string) *llms.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": content}}},
			"usage":   map[string]int{"total_tokens": 5},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return llms.NewClient(&config.LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1})
}

func TestService_ContextEmptyForUnknownSession(t *testing.T) {
	svc, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer svc.Close()

	out, err := svc.Context(context.Background(), "missing-session")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestService_ContextIncludesRecentTurnsVerbatim(t *testing.T) {
	svc, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	require.NoError(t, svc.AppendTurn(ctx, "s1", "user", "what is the capital of France"))
	require.NoError(t, svc.AppendTurn(ctx, "s1", "assistant", "Paris"))

	out, err := svc.Context(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "capital of France")
	assert.Contains(t, out, "Paris")
}

func TestService_SummarizesOldTurnsOnceOverBudget(t *testing.T) {
	client := newStubClient(t, "user asked about France's capital; assistant answered Paris.")
	svc, err := New(Config{Path: ":memory:", Client: client})
	require.NoError(t, err)
	defer svc.Close()
	svc.tokenBudget = 5
	svc.keepRecent = 1

	ctx := context.Background()
	require.NoError(t, svc.AppendTurn(ctx, "s1", "user", "what is the capital of France and why is it significant historically"))
	require.NoError(t, svc.AppendTurn(ctx, "s1", "assistant", "Paris has been the capital since the Middle Ages for these long reasons"))
	require.NoError(t, svc.AppendTurn(ctx, "s1", "user", "thanks"))

	out, err := svc.Context(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Previous conversation summary:")
	assert.Contains(t, out, "Paris")
	assert.Contains(t, out, "thanks")

	summary, err := svc.storedSummary(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestService_AppendTurnPersistsAcrossContextCalls(t *testing.T) {
	svc, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AppendTurn(ctx, "s2", "user", "turn"))
	}

	turns, err := svc.turns(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, turns, 3)
}
