package search

import (
	"fmt"

	"github.com/poiesic/sift/core"
)

// Mode is a shorthand preset that pre-populates a QueryContext.
type Mode string

const (
	// ModeSemantic ranks by embedding similarity alone.
	ModeSemantic Mode = "semantic"
	// ModeValidatedOnly strongly prefers solutions confirmed to work.
	ModeValidatedOnly Mode = "validated_only"
	// ModeFailedOnly surfaces approaches known not to work.
	ModeFailedOnly Mode = "failed_only"
	// ModeRecentOnly weighs fresh messages up.
	ModeRecentOnly Mode = "recent_only"
	// ModeByTopic restricts ranking boost to one detected topic.
	ModeByTopic Mode = "by_topic"
)

// ParseMode parses the wire representation of a search mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSemantic, ModeValidatedOnly, ModeFailedOnly, ModeRecentOnly, ModeByTopic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ContextForMode builds the QueryContext a mode stands for. topicFocus
// is only consulted by by_topic, which requires it non-empty and fails
// fast without one.
func ContextForMode(mode Mode, topicFocus string) (core.QueryContext, error) {
	switch mode {
	case ModeSemantic:
		return core.QueryContext{}, nil
	case ModeValidatedOnly:
		return core.QueryContext{
			PreferSolutions:      true,
			ValidationPreference: core.PreferenceValidatedOnly,
		}, nil
	case ModeFailedOnly:
		return core.QueryContext{
			ValidationPreference: core.PreferenceIncludeFailures,
		}, nil
	case ModeRecentOnly:
		return core.QueryContext{PreferRecent: true}, nil
	case ModeByTopic:
		if topicFocus == "" {
			return core.QueryContext{}, ErrTopicFocusRequired
		}
		return core.QueryContext{TopicFocus: topicFocus}, nil
	default:
		return core.QueryContext{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
