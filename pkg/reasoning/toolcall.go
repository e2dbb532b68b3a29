package reasoning

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// toolCallPattern matches a single, non-nested <tool_call>...</tool_call>
// block. Lazy (.*?) with DOTALL via (?s), so each match ends at the first
// closing tag after its opening tag: the model never emits one tool_call
// inside another, so that closing tag belongs to the tool_call that opened it.
var toolCallPattern = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)

// thinkPattern matches a single <think>...</think> block.
var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// rawToolCall is the JSON shape a tool_call block must parse as: at minimum a
// "tool" field; "args" defaults to an empty map when omitted.
type rawToolCall struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// extractToolCalls scans text for <tool_call>{...}</tool_call> blocks in
// document order. Malformed blocks (invalid JSON, or valid JSON missing the
// required "tool" field) are logged and skipped rather than aborting the
// whole extraction. The returned remainder has every tool_call block (valid
// or malformed) removed, leaving only the model's prose.
func extractToolCalls(text string) (calls []ToolCallRequest, remainder string) {
	matches := toolCallPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, text
	}

	var out strings.Builder
	lastEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		bodyStart, bodyEnd := m[2], m[3]
		out.WriteString(text[lastEnd:start])
		lastEnd = end

		body := strings.TrimSpace(text[bodyStart:bodyEnd])
		var raw rawToolCall
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			slog.Warn("malformed tool_call block, skipping", "error", err)
			continue
		}
		if raw.Tool == "" {
			slog.Warn("tool_call block missing required \"tool\" field, skipping")
			continue
		}
		if raw.Args == nil {
			raw.Args = map[string]interface{}{}
		}
		calls = append(calls, ToolCallRequest{Tool: raw.Tool, Args: raw.Args})
	}
	out.WriteString(text[lastEnd:])

	return calls, out.String()
}

// extractThinking strips every <think>...</think> block from text, returning
// their concatenated contents (joined by a blank line) and the remainder with
// the blocks removed.
func extractThinking(text string) (thinking string, remainder string) {
	matches := thinkPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return "", text
	}

	var thoughts []string
	var out strings.Builder
	lastEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		bodyStart, bodyEnd := m[2], m[3]
		out.WriteString(text[lastEnd:start])
		lastEnd = end
		thoughts = append(thoughts, strings.TrimSpace(text[bodyStart:bodyEnd]))
	}
	out.WriteString(text[lastEnd:])

	return strings.Join(thoughts, "\n\n"), out.String()
}

// truncate limits s to at most n runes, appending an ellipsis marker when it
// had to cut. Used both for the display-limited ToolResultEvent and the
// conversation-limited synthetic tool_result message.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…(truncated)"
}
