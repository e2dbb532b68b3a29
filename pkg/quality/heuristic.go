package quality

import (
	"regexp"
	"strings"
)

var codeGenVerbPattern = regexp.MustCompile(`(?i)^\s*(write|create|implement|generate)\b`)
var functionThatPattern = regexp.MustCompile(`(?i)function that`)

// workspaceEditingKeywords rule a goal back out of the quality pipeline: it's
// asking to change something that already exists, which belongs to the
// single-agent assistant path (or the executor, if it's big enough), not a
// stand-alone generated snippet.
var workspaceEditingKeywords = []string{
	"in this repo", "in this codebase", "in the codebase", "across the codebase",
	"this project", "existing file", "refactor", "the workspace", "my repo",
	"fix the bug", "in src/", "edit the file", "update the file", "this function",
}

// MatchesCodeGenerationHeuristic reports whether goal should route through
// the quality pipeline instead of the single-agent assistant path: it reads
// as a request for a stand-alone piece of code and makes no reference to
// editing an existing workspace.
func MatchesCodeGenerationHeuristic(goal string) bool {
	lower := strings.ToLower(goal)
	for _, kw := range workspaceEditingKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return codeGenVerbPattern.MatchString(goal) || functionThatPattern.MatchString(lower)
}
