package quality

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n(.*?)```")

var chainOfThoughtOpeners = []string{
	"let me think", "first, i'll", "first i'll", "step 1:", "let's break this down",
}

// bannedPatterns are matched inside code blocks only; matching the same text
// in prose (e.g. a note warning against eval) doesn't penalize a candidate.
var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`eval\(`),
	regexp.MustCompile(`new Function\(`),
	regexp.MustCompile(`process\.env\.\w+\s*==`),
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password)\s*[:=]\s*["'][^"']{4,}["']`),
	regexp.MustCompile(`:\s*any\b`),
}

var functionStartPattern = regexp.MustCompile(`(?m)^\s*(func\s+\w+\s*\(|function\s*\w*\s*\(|def\s+\w+\s*\()`)

// programmaticScore grades a candidate's adherence to the required 4-part
// output (summary / code block / tests / notes) and penalizes a fixed set of
// red flags found inside its code blocks. Starts at 100, floored at 0.
func programmaticScore(text string) int {
	score := 100
	blocks := codeBlockPattern.FindAllStringSubmatch(text, -1)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	hasSummary := len(lines) > 0 && strings.TrimSpace(lines[0]) != "" && !strings.HasPrefix(strings.TrimSpace(lines[0]), "```")
	hasCodeBlock := len(blocks) > 0
	hasTests := containsSectionKeyword(text, "test")
	hasNotes := containsSectionKeyword(text, "note")

	if !hasSummary && !hasCodeBlock && !hasTests && !hasNotes {
		score -= 30
	}
	if !hasSummary {
		score -= 10
	}
	if !hasCodeBlock {
		score -= 20
	}
	if !hasTests {
		score -= 10
	}
	if !hasNotes {
		score -= 5
	}

	lower := strings.ToLower(text)
	for _, opener := range chainOfThoughtOpeners {
		if strings.Contains(lower, opener) {
			score -= 25
			break
		}
	}

	for _, block := range blocks {
		code := block[1]
		for _, pattern := range bannedPatterns {
			if pattern.MatchString(code) {
				score -= 10
			}
		}
	}

	if len(blocks) > 3 {
		score -= 10
	}

	switch maxLen := maxFunctionLength(blocks); {
	case maxLen > 200:
		score -= 15
	case maxLen > 60:
		score -= 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func containsSectionKeyword(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), keyword)
}

// maxFunctionLength estimates the longest function across all code blocks by
// measuring the line span between one function-start match and the next (or
// end of block). A rough proxy, not a parser.
func maxFunctionLength(blocks [][]string) int {
	maxLen := 0
	for _, block := range blocks {
		lines := strings.Split(block[1], "\n")
		var starts []int
		for i, line := range lines {
			if functionStartPattern.MatchString(line) {
				starts = append(starts, i)
			}
		}
		for i, start := range starts {
			end := len(lines)
			if i+1 < len(starts) {
				end = starts[i+1]
			}
			if length := end - start; length > maxLen {
				maxLen = length
			}
		}
	}
	return maxLen
}

var criticFencePattern = regexp.MustCompile("(?s)```(?:json)?\\n?(.*?)```")

type criticResponse struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// parseCriticResponse extracts {score, reason} from the critic's raw text:
// fenced JSON first, then the raw text itself. Any failure yields the safe
// default of 50 with an empty reason.
func parseCriticResponse(raw string) (int, string) {
	candidates := []string{raw}
	if m := criticFencePattern.FindStringSubmatch(raw); m != nil {
		candidates = []string{m[1], raw}
	}

	for _, candidate := range candidates {
		var resp criticResponse
		if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &resp); err == nil {
			return clampScore(resp.Score), resp.Reason
		}
	}
	return 50, ""
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
