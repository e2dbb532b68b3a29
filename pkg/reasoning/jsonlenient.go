package reasoning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFencePattern   = regexp.MustCompile("(?s)```(?:json)?\\n?(.*?)```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// lenientJSON strips markdown code fences and line comments from a model's
// raw text response, removes trailing commas, and unmarshals what's left into
// out. Both the decomposer and the architect (C6/C8) use this so they accept
// the same shape of minor formatting noise a model tends to produce around a
// JSON-only instruction.
func lenientJSON(raw string, out interface{}) error {
	cleaned := stripCodeFence(raw)
	cleaned = stripLineComments(cleaned)
	cleaned = trailingCommaRegex.ReplaceAllString(cleaned, "$1")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	// Bracketed-substring fallback: find the outermost {...} or [...] and
	// retry once. Models sometimes wrap valid JSON in prose despite
	// instructions not to.
	if substr, ok := extractBracketedSubstring(cleaned); ok {
		if err := json.Unmarshal([]byte(substr), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON response: %s", truncate(cleaned, 200))
}

func stripCodeFence(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// stripLineComments removes "#" and "//" line comments that occur outside of
// string literals, line by line.
func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineComment(line string) string {
	inString := false
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && r == '#':
			return line[:i]
		case !inString && r == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

// extractBracketedSubstring finds the first top-level JSON object or array in
// s by scanning for the first opening bracket and its matching close,
// ignoring brackets inside string literals.
func extractBracketedSubstring(s string) (string, bool) {
	start := -1
	var openCh, closeCh byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			if s[i] == '{' {
				openCh, closeCh = '{', '}'
			} else {
				openCh, closeCh = '[', ']'
			}
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string, brackets don't count
		case c == openCh:
			depth++
		case c == closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
