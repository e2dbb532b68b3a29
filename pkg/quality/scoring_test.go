package quality

import "testing"

const wellFormedCandidate = "Reverses a string.\n\n```go\nfunc reverse(s string) string {\n\treturn s\n}\n```\n\n" +
	"Tests:\n```go\nfunc TestReverse(t *testing.T) {}\n```\n\nNotes: trivial implementation."

func TestProgrammaticScore_WellFormedCandidateScoresHigh(t *testing.T) {
	score := programmaticScore(wellFormedCandidate)
	if score < 90 {
		t.Errorf("expected a well-formed candidate to score >= 90, got %d", score)
	}
}

func TestProgrammaticScore_MissingEverythingScoresLow(t *testing.T) {
	score := programmaticScore("")
	if score > 30 {
		t.Errorf("expected an empty candidate to score low, got %d", score)
	}
}

func TestProgrammaticScore_ChainOfThoughtOpenerPenalized(t *testing.T) {
	withCoT := "Let me think about this step by step.\n\n" + wellFormedCandidate
	if programmaticScore(withCoT) >= programmaticScore(wellFormedCandidate) {
		t.Error("expected chain-of-thought opener to reduce the score")
	}
}

func TestProgrammaticScore_BannedPatternInCodeBlockPenalized(t *testing.T) {
	withEval := "Summary.\n\n```js\neval(userInput)\n```\n\nTests:\n```js\n```\n\nNotes: none."
	withoutEval := "Summary.\n\n```js\nconsole.log('ok')\n```\n\nTests:\n```js\n```\n\nNotes: none."
	if programmaticScore(withEval) >= programmaticScore(withoutEval) {
		t.Error("expected eval( inside a code block to reduce the score")
	}
}

func TestProgrammaticScore_BannedPatternInProseNotPenalized(t *testing.T) {
	withEvalInProse := "Summary that mentions eval( is unsafe.\n\n```js\nconsole.log('ok')\n```\n\nTests:\n```js\n```\n\nNotes: none."
	withoutMention := "Summary.\n\n```js\nconsole.log('ok')\n```\n\nTests:\n```js\n```\n\nNotes: none."
	if programmaticScore(withEvalInProse) != programmaticScore(withoutMention) {
		t.Error("banned patterns in prose (outside code blocks) should not be penalized")
	}
}

func TestParseCriticResponse_PlainJSON(t *testing.T) {
	score, reason := parseCriticResponse(`{"score": 82, "reason": "solid"}`)
	if score != 82 || reason != "solid" {
		t.Errorf("got score=%d reason=%q", score, reason)
	}
}

func TestParseCriticResponse_FencedJSON(t *testing.T) {
	score, _ := parseCriticResponse("```json\n{\"score\": 61, \"reason\": \"ok\"}\n```")
	if score != 61 {
		t.Errorf("got score=%d", score)
	}
}

func TestParseCriticResponse_MalformedDefaultsTo50(t *testing.T) {
	score, reason := parseCriticResponse("not json")
	if score != 50 || reason != "" {
		t.Errorf("got score=%d reason=%q", score, reason)
	}
}

func TestParseCriticResponse_ClampsOutOfRangeScore(t *testing.T) {
	score, _ := parseCriticResponse(`{"score": 140}`)
	if score != 100 {
		t.Errorf("expected clamp to 100, got %d", score)
	}
}
