package quality

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
)

func newQualityTestClient(t *testing.T, respond func(systemPrompt string) string) *llms.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		var systemContent string
		for _, m := range body.Messages {
			if m.Role == "system" {
				systemContent = m.Content
			}
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": respond(systemContent)}}},
			"usage":   map[string]int{"total_tokens": 5},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return llms.NewClient(&config.LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1})
}

func TestPipeline_GeneratesAndScoresCandidates(t *testing.T) {
	client := newQualityTestClient(t, func(systemPrompt string) string {
		if strings.Contains(systemPrompt, "strict code reviewer") {
			return `{"score": 90, "reason": "clean"}`
		}
		return wellFormedCandidate
	})

	p := New(client)
	result := p.Run(context.Background(), "write a function that reverses a string")

	if result.CandidateCount != DefaultCandidates {
		t.Fatalf("expected %d candidates, got %d", DefaultCandidates, result.CandidateCount)
	}
	if result.WasRewritten {
		t.Error("a well-formed high-scoring candidate should not trigger a rewrite")
	}
	if result.FinalScore < DefaultRewriteThreshold {
		t.Errorf("expected final score above the rewrite threshold, got %d", result.FinalScore)
	}
	if len(result.AllScores) != DefaultCandidates {
		t.Errorf("expected %d recorded scores, got %d", DefaultCandidates, len(result.AllScores))
	}
}

func TestPipeline_LowScoreTriggersRewrite(t *testing.T) {
	calls := 0
	client := newQualityTestClient(t, func(systemPrompt string) string {
		calls++
		switch {
		case strings.Contains(systemPrompt, "strict code reviewer"):
			return `{"score": 20, "reason": "missing tests"}`
		case strings.Contains(systemPrompt, "Rewrite the candidate"):
			return wellFormedCandidate
		default:
			return "no structure here at all"
		}
	})

	p := New(client)
	result := p.Run(context.Background(), "write a function that does nothing useful")

	if !result.WasRewritten {
		t.Error("expected a low-scoring candidate set to trigger a rewrite")
	}
	if result.FinalText != wellFormedCandidate {
		t.Errorf("expected final text to be the rewritten candidate, got %q", result.FinalText)
	}
}

func TestPipeline_AllGenerationCallsFailingYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := llms.NewClient(&config.LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1})
	p := New(client)
	result := p.Run(context.Background(), "write a function that sorts a list")

	if result.FinalText != "" {
		t.Errorf("expected empty final text when every candidate generation fails, got %q", result.FinalText)
	}
	if result.CandidateCount != 0 {
		t.Errorf("expected zero candidates, got %d", result.CandidateCount)
	}
}
