// Package quality implements the code-generation quality pipeline: generate
// several candidates at laddered temperatures, score each one both
// programmatically and with a critic model call, rerank, and rewrite the
// winner if it still falls short of the bar.
package quality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
)

const (
	DefaultCandidates       = 3
	DefaultCodeTemperature  = 0.05
	maxCandidateTemperature = 0.15
	DefaultRewriteThreshold = 70
)

const styleSystemPrompt = `You write production-quality code snippets. Always respond in exactly four parts, in this order:
1. A one-line summary of what the code does.
2. A single fenced code block containing the implementation.
3. A fenced code block of tests for it, introduced by the word "Tests:".
4. A short "Notes:" section covering caveats or assumptions.
Do not narrate your reasoning process. Do not use eval, new Function, or hard-coded secrets.`

var fewShotMessages = []llms.Message{
	{Role: "user", Content: "Write a function that reverses a string."},
	{Role: "assistant", Content: "Reverses a string in place using two pointers on its rune slice.\n\n" +
		"```go\nfunc reverse(s []rune) {\n\tfor i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {\n\t\ts[i], s[j] = s[j], s[i]\n\t}\n}\n```\n\n" +
		"Tests:\n```go\nfunc TestReverse(t *testing.T) {\n\tr := []rune(\"abc\")\n\treverse(r)\n\tif string(r) != \"cba\" {\n\t\tt.Fatalf(\"got %s\", string(r))\n\t}\n}\n```\n\n" +
		"Notes: operates on a rune slice rather than a byte slice to stay correct for multi-byte characters."},
}

const criticSystemPrompt = `You are a strict code reviewer. Given a goal and a candidate response, respond with JSON only: {"score": 0-100, "reason": "one sentence"}. Penalize anything unsafe, untested, or off-topic.`

const criticPromptTemplate = "Goal: %s\n\nCandidate:\n%s"

// CandidateScore is one candidate's programmatic, learned, and combined score.
type CandidateScore struct {
	Text         string
	Programmatic int
	Learned      int
	Combined     int
	Reason       string
}

// Result is the quality pipeline's output: the winning (possibly rewritten)
// text plus every candidate's score for inspection.
type Result struct {
	FinalText      string
	FinalScore     int
	CandidateCount int
	WasRewritten   bool
	AllScores      []CandidateScore
	Duration       time.Duration
}

// Pipeline runs the generate/score/rerank/rewrite sequence against a single
// shared llms.Client.
type Pipeline struct {
	client           *llms.Client
	candidates       int
	codeTemperature  float64
	rewriteThreshold int
}

func New(client *llms.Client) *Pipeline {
	return &Pipeline{
		client:           client,
		candidates:       DefaultCandidates,
		codeTemperature:  DefaultCodeTemperature,
		rewriteThreshold: DefaultRewriteThreshold,
	}
}

// Run generates candidates for goal, scores and reranks them, rewrites the
// winner if needed, and returns the final result. It never returns an error;
// a candidate whose generation call fails is simply dropped, and an entirely
// empty candidate set yields a Result with FinalText "", no scores, and only
// Duration set.
func (p *Pipeline) Run(ctx context.Context, goal string) *Result {
	start := time.Now()

	var texts []string
	for i := 0; i < p.candidates; i++ {
		temperature := p.codeTemperature + 0.02*float64(i)
		if temperature > maxCandidateTemperature {
			temperature = maxCandidateTemperature
		}

		messages := append([]llms.Message{{Role: "system", Content: styleSystemPrompt}}, fewShotMessages...)
		messages = append(messages, llms.Message{Role: "user", Content: goal})

		text, err := p.client.Complete(ctx, llms.CompletionOptions{Messages: messages, Temperature: temperature})
		if err != nil {
			slog.Warn("quality pipeline candidate generation failed, dropping candidate", "index", i, "error", err)
			continue
		}
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return &Result{Duration: time.Since(start)}
	}

	scores := make([]CandidateScore, len(texts))
	for i, text := range texts {
		programmatic := programmaticScore(text)
		learned, reason := p.learnedScore(ctx, goal, text)
		scores[i] = CandidateScore{
			Text:         text,
			Programmatic: programmatic,
			Learned:      learned,
			Combined:     combineScores(programmatic, learned),
			Reason:       reason,
		}
	}

	bestIdx := 0
	for i, s := range scores {
		if s.Combined > scores[bestIdx].Combined {
			bestIdx = i
		}
	}

	finalText := scores[bestIdx].Text
	finalScore := scores[bestIdx].Combined
	wasRewritten := false

	if scores[bestIdx].Combined < p.rewriteThreshold {
		if rewritten, err := p.rewrite(ctx, goal, finalText); err == nil {
			newProgrammatic := programmaticScore(rewritten)
			finalText = rewritten
			finalScore = combineScores(newProgrammatic, scores[bestIdx].Learned)
			wasRewritten = true
		} else {
			slog.Warn("quality pipeline rewrite call failed, keeping best candidate", "error", err)
		}
	}

	return &Result{
		FinalText:      finalText,
		FinalScore:     finalScore,
		CandidateCount: len(texts),
		WasRewritten:   wasRewritten,
		AllScores:      scores,
		Duration:       time.Since(start),
	}
}

func combineScores(programmatic, learned int) int {
	return int(math.Round(0.6*float64(programmatic) + 0.4*float64(learned)))
}

func (p *Pipeline) learnedScore(ctx context.Context, goal, candidate string) (int, string) {
	raw, err := p.client.Complete(ctx, llms.CompletionOptions{
		Messages: []llms.Message{
			{Role: "system", Content: criticSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(criticPromptTemplate, goal, candidate)},
		},
		Temperature: 0,
	})
	if err != nil {
		slog.Warn("quality pipeline critic call failed, defaulting learned score", "error", err)
		return 50, ""
	}
	return parseCriticResponse(raw)
}

const rewriteSystemPrompt = `Rewrite the candidate below so it strictly follows the required structure: one-line summary, single fenced code block, a "Tests:" fenced code block, a "Notes:" section. Preserve its functionality; do not change what it does.`

func (p *Pipeline) rewrite(ctx context.Context, goal, candidate string) (string, error) {
	return p.client.Complete(ctx, llms.CompletionOptions{
		Messages: []llms.Message{
			{Role: "system", Content: rewriteSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Goal: %s\n\nCandidate to rewrite:\n%s", goal, candidate)},
		},
		Temperature: 0,
	})
}
