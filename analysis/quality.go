package analysis

import (
	"strings"

	"github.com/poiesic/sift/core"
)

// Pattern tables for solution quality scoring. Each match adds its
// table's increment to the base score of 1.0, capped at 3.0.
var (
	// successMarkers add 0.3 each.
	successMarkers = []string{
		"fixed", "working", "works", "solved", "resolved", "passing",
		"succeeded", "done",
	}

	// qualityIndicators add 0.4 each.
	qualityIndicators = []string{
		"tested", "verified", "production-ready", "confirmed", "benchmarked",
	}

	// implementationPhrases add 0.5 each.
	implementationPhrases = []string{
		"tests passing", "all tests pass", "deployed successfully",
		"implemented and tested", "works as expected",
	}
)

// editingTools are tool roles that can modify files. Their use in a
// turn is evidence the assistant actually applied a change.
var editingTools = map[string]bool{
	"edit":   true,
	"write":  true,
	"patch":  true,
	"create": true,
}

// suggestionMarkers identify actionable fix language in prose.
var suggestionMarkers = []string{
	"try", "fix", "change", "update", "replace", "add", "remove", "set",
	"install", "run", "you should", "you need to", "the fix is",
	"here's how", "instead of",
}

// configMarkers identify configuration-change vocabulary, used to
// categorize solution attempts.
var configMarkers = []string{
	"config", "configuration", "setting", "settings", "environment variable",
	"env var", "yaml", "toml", "flag", "option",
}

// ScoreSolutionQuality scores how strongly a message reads as a working
// solution. The score starts at 1.0 and accumulates:
//
//	+0.3 per success marker  +0.4 per quality indicator
//	+0.5 per implementation-success phrase
//	+0.2 if the message contains code  +0.3 if an editing tool was used
//
// The result is capped at 3.0. Empty input scores the base 1.0.
func ScoreSolutionQuality(text string, hasCode bool, toolRoles []string) float64 {
	score := core.MinQualityScore

	score += 0.3 * float64(countMatches(text, successMarkers))
	score += 0.4 * float64(countMatches(text, qualityIndicators))
	score += 0.5 * float64(countMatches(text, implementationPhrases))

	if hasCode {
		score += 0.2
	}
	if usedEditingTool(toolRoles) {
		score += 0.3
	}

	return core.ClampQuality(score)
}

func usedEditingTool(toolRoles []string) bool {
	for _, role := range toolRoles {
		if editingTools[strings.ToLower(role)] {
			return true
		}
	}
	return false
}

// HasCodeBlock reports whether the text contains a fenced code block.
func HasCodeBlock(text string) bool {
	return strings.Count(text, "```") >= 2
}

// IsSolutionAttempt reports whether a message proposes a fix. Only
// assistant messages qualify, and only when they carry an actionable
// marker: a code block, imperative fix language, or a success claim.
// This gates solution/feedback pairing during back-fill.
func IsSolutionAttempt(text string, role core.Role) bool {
	if role != core.RoleAssistant {
		return false
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	if HasCodeBlock(text) {
		return true
	}
	if containsAny(text, suggestionMarkers) {
		return true
	}
	return containsAny(text, successMarkers)
}

// CategorizeSolution derives the solution category from message text.
// Code blocks win over configuration vocabulary, which wins over plain
// prose suggestions.
func CategorizeSolution(text string) core.SolutionCategory {
	switch {
	case HasCodeBlock(text):
		return core.CategoryCodeFix
	case containsAny(text, configMarkers):
		return core.CategoryConfigChange
	case containsAny(text, suggestionMarkers):
		return core.CategoryApproachSuggestion
	default:
		return core.CategoryUnknown
	}
}
