package core

import (
	"fmt"
	"strings"
)

// ValidationPreference controls how validation outcomes weigh into ranking.
type ValidationPreference int

const (
	// PreferenceNeutral weighs candidates by their solution confidence.
	PreferenceNeutral ValidationPreference = iota
	// PreferenceValidatedOnly strongly boosts validated solutions and
	// suppresses refuted ones.
	PreferenceValidatedOnly
	// PreferenceIncludeFailures boosts refuted solutions, for queries that
	// look for approaches known not to work.
	PreferenceIncludeFailures
)

// String returns the wire representation of the preference.
func (p ValidationPreference) String() string {
	switch p {
	case PreferenceValidatedOnly:
		return "validated_only"
	case PreferenceIncludeFailures:
		return "include_failures"
	default:
		return "neutral"
	}
}

// ParseValidationPreference parses the wire representation of a preference.
func ParseValidationPreference(s string) (ValidationPreference, error) {
	switch s {
	case "neutral":
		return PreferenceNeutral, nil
	case "validated_only":
		return PreferenceValidatedOnly, nil
	case "include_failures":
		return PreferenceIncludeFailures, nil
	default:
		return 0, fmt.Errorf("invalid validation preference %q", s)
	}
}

// QueryContext carries the caller's ranking preferences for one search.
type QueryContext struct {
	TopicFocus           string
	PreferSolutions      bool
	TroubleshootingMode  bool
	PreferRecent         bool
	ValidationPreference ValidationPreference
	Project              string
}

// Key returns a canonical string form of the context, used together with
// the query text as the cache key. Two contexts with identical settings
// always produce identical keys.
func (q QueryContext) Key() string {
	var b strings.Builder
	b.WriteString("topic=")
	b.WriteString(q.TopicFocus)
	b.WriteString("|sol=")
	b.WriteString(boolKey(q.PreferSolutions))
	b.WriteString("|tsh=")
	b.WriteString(boolKey(q.TroubleshootingMode))
	b.WriteString("|rec=")
	b.WriteString(boolKey(q.PreferRecent))
	b.WriteString("|val=")
	b.WriteString(q.ValidationPreference.String())
	b.WriteString("|proj=")
	b.WriteString(q.Project)
	return b.String()
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// ScoreBreakdown records every factor that contributed to a final score,
// so rankings stay explainable and testable.
type ScoreBreakdown struct {
	BaseSimilarity       float64
	ProjectBoost         float64
	TopicBoost           float64
	QualityBoost         float64
	TroubleshootingBoost float64
	ValidationBoost      float64
	RecencyBoost         float64
	PreferenceMultiplier float64
	FinalScore           float64
}

// ScoredResult is one ranked search hit with its full score breakdown.
type ScoredResult struct {
	Message   *Message
	Breakdown ScoreBreakdown
}

// Patch is the unit of back-fill output: the set of enrichment fields that
// changed for one message, in the flat key/value form used at the storage
// boundary. An unchanged message produces no patch at all.
type Patch struct {
	MessageID ID
	Fields    map[string]string
}

// Empty reports whether the patch carries no changes.
func (p Patch) Empty() bool {
	return len(p.Fields) == 0
}
