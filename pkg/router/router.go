// Package router picks which of the four execution paths handles an incoming
// goal: a single-agent answer, the standard plan-code-review loop, a DAG of
// domain specialists, or the fixed eight-phase app-creation pipeline.
package router

import (
	"regexp"
	"strings"
)

// Route is one of the four execution paths a goal can be dispatched to.
type Route string

const (
	RouteSimple        Route = "simple"
	RouteStandard      Route = "standard"
	RouteDAG           Route = "dag"
	RouteFixedPipeline Route = "fixed-pipeline"
)

// DefaultComplexityThreshold is the complexity score at or above which a goal
// is routed to the DAG path instead of the standard plan-code-review path.
const DefaultComplexityThreshold = 50

var appCreationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(create|build|make)\b[^.]{0,60}\b(app|application|clone|saas|platform|dashboard)\b`),
	regexp.MustCompile(`(?i)\b(spotify|airbnb|uber|netflix|instagram|twitter|slack|notion|trello|shopify)\b[^.]{0,40}\bclone\b`),
}

var featureKeywords = []string{
	"authentication", "auth", "login", "signup", "payments", "billing",
	"dashboard", "real-time", "realtime", "notifications", "search",
	"chat", "messaging", "admin panel", "api", "database", "file upload",
}

var buildVerbs = regexp.MustCompile(`(?i)\b(build|create|make|develop|implement)\b`)

var domainKeywords = []string{
	"security", "audit", "migration", "database", "schema", "performance",
	"optimize", "test", "testing", "ci/cd", "deploy", "devops", "frontend",
	"backend", "api", "docs", "documentation",
}

var multiFileMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)across the codebase`),
	regexp.MustCompile(`(?i)full[- ]stack`),
}

var enterpriseMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)production`),
	regexp.MustCompile(`(?i)microservice`),
	regexp.MustCompile(`(?i)from scratch`),
	regexp.MustCompile(`(?i)enterprise`),
	regexp.MustCompile(`(?i)scalable`),
}

var numberedListItem = regexp.MustCompile(`(?m)^\s*\d+[.)]\s`)
var fileExtensionToken = regexp.MustCompile(`\.\w{1,5}\b`)
var andWord = regexp.MustCompile(`(?i)\band\b`)

var simpleStarters = []string{"what", "how", "why", "explain", "can you"}

var codingVerbs = regexp.MustCompile(`(?i)\b(implement|refactor|build|write|fix|debug|add|create|modify|delete|migrate|deploy|optimize|test)\b`)

// Select returns the route chosen for goal, applying the four-step ordering:
// app-creation detection, then complexity score, then the simple-question
// heuristic, defaulting to the standard path. It uses DefaultComplexityThreshold;
// call SelectWithThreshold to override it.
func Select(goal string) Route {
	return SelectWithThreshold(goal, DefaultComplexityThreshold)
}

// SelectWithThreshold is Select with an explicit DAG-route complexity
// threshold, for callers whose config overrides DefaultComplexityThreshold.
// A threshold <= 0 falls back to DefaultComplexityThreshold.
func SelectWithThreshold(goal string, threshold int) Route {
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}
	if isAppCreation(goal) {
		return RouteFixedPipeline
	}
	if ComplexityScore(goal) >= threshold {
		return RouteDAG
	}
	if isSimpleQuestion(goal) {
		return RouteSimple
	}
	return RouteStandard
}

func isAppCreation(goal string) bool {
	for _, pattern := range appCreationPatterns {
		if pattern.MatchString(goal) {
			return true
		}
	}
	return hasMultiFeatureRequest(goal)
}

// hasMultiFeatureRequest matches when the goal names at least 3 distinct
// feature keywords and also contains a build verb.
func hasMultiFeatureRequest(goal string) bool {
	if !buildVerbs.MatchString(goal) {
		return false
	}
	lower := strings.ToLower(goal)
	count := 0
	for _, kw := range featureKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count >= 3
}

// ComplexityScore computes the 0..100 additive complexity score described for
// the router's DAG-route threshold.
func ComplexityScore(goal string) int {
	score := 0
	length := len(goal)

	switch {
	case length > 500:
		score += 20
	case length > 200:
		score += 10
	}

	listSeparators := strings.Count(goal, ",") + len(andWord.FindAllString(goal, -1))
	hasMultiFileMarker := listSeparators >= 3
	if !hasMultiFileMarker {
		for _, marker := range multiFileMarkers {
			if marker.MatchString(goal) {
				hasMultiFileMarker = true
				break
			}
		}
	}
	if hasMultiFileMarker {
		score += 15
	}

	lower := strings.ToLower(goal)
	domainMatches := 0
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			domainMatches++
		}
	}
	switch {
	case domainMatches >= 3:
		score += 30
	case domainMatches >= 2:
		score += 20
	case domainMatches >= 1:
		score += 10
	}

	for _, marker := range enterpriseMarkers {
		if marker.MatchString(goal) {
			score += 10
			break
		}
	}

	if len(numberedListItem.FindAllString(goal, -1)) >= 3 {
		score += 15
	}

	if len(fileExtensionToken.FindAllString(goal, -1)) >= 4 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func isSimpleQuestion(goal string) bool {
	trimmed := strings.TrimSpace(goal)
	lower := strings.ToLower(trimmed)

	if len(trimmed) < 30 {
		for _, starter := range simpleStarters {
			if strings.HasPrefix(lower, starter) {
				return true
			}
		}
	}

	if len(trimmed) < 80 && !codingVerbs.MatchString(trimmed) {
		return true
	}

	return false
}
