package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Message IDs are deterministic: the same session, role, and position
// always hash to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MessageID generates the deterministic ID for a message from its session,
// role, and position within the session transcript.
func MessageID(sessionID string, role Role, position int) ID {
	return IDFromContent(sessionID + "|" + role.String() + "|" + strconv.Itoa(position))
}

// Role identifies the author of a message.
type Role int

const (
	// RoleUser represents a human user.
	RoleUser Role = iota + 1
	// RoleAssistant represents an AI assistant.
	RoleAssistant
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// ParseRole parses the wire representation of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return 0, ErrInvalidRole
	}
}

// SolutionCategory classifies the kind of fix an assistant message proposes.
type SolutionCategory int

const (
	// CategoryUnknown is the default when no category markers match.
	CategoryUnknown SolutionCategory = iota
	// CategoryCodeFix indicates the message contains concrete code changes.
	CategoryCodeFix
	// CategoryConfigChange indicates the message proposes configuration changes.
	CategoryConfigChange
	// CategoryApproachSuggestion indicates the message suggests an approach in prose.
	CategoryApproachSuggestion
)

// String returns the wire representation of the category.
func (c SolutionCategory) String() string {
	switch c {
	case CategoryCodeFix:
		return "code_fix"
	case CategoryConfigChange:
		return "config_change"
	case CategoryApproachSuggestion:
		return "approach_suggestion"
	default:
		return "unknown"
	}
}

// ParseSolutionCategory parses the wire representation of a category.
func ParseSolutionCategory(s string) (SolutionCategory, error) {
	switch s {
	case "unknown":
		return CategoryUnknown, nil
	case "code_fix":
		return CategoryCodeFix, nil
	case "config_change":
		return CategoryConfigChange, nil
	case "approach_suggestion":
		return CategoryApproachSuggestion, nil
	default:
		return 0, ErrInvalidCategory
	}
}

// Sentiment classifies a user's follow-up to a solution attempt.
type Sentiment int

const (
	// SentimentNeutral is the default when no feedback patterns match.
	SentimentNeutral Sentiment = iota
	// SentimentPositive indicates the follow-up confirms the solution.
	SentimentPositive
	// SentimentNegative indicates the follow-up refutes the solution.
	SentimentNegative
	// SentimentPartial indicates the follow-up partially confirms the solution.
	SentimentPartial
)

// String returns the wire representation of the sentiment.
func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "positive"
	case SentimentNegative:
		return "negative"
	case SentimentPartial:
		return "partial"
	default:
		return "neutral"
	}
}

// ParseSentiment parses the wire representation of a sentiment.
func ParseSentiment(s string) (Sentiment, error) {
	switch s {
	case "neutral":
		return SentimentNeutral, nil
	case "positive":
		return SentimentPositive, nil
	case "negative":
		return SentimentNegative, nil
	case "partial":
		return SentimentPartial, nil
	default:
		return 0, ErrInvalidSentiment
	}
}

// Message represents a single message in a conversation transcript.
// Content fields are immutable once created; Enrichment is populated
// at ingestion time and again by the back-fill engine.
type Message struct {
	Id         ID
	SessionID  string
	Role       Role
	Contents   string
	Position   int       // 0-based index within the session
	CreatedAt  time.Time // When the message was originally sent
	InsertedAt time.Time // When the record was inserted into the database
	UpdatedAt  time.Time // When the record was last updated
	Vector     []float32 // Embedding vector for semantic search (populated asynchronously)
	Enrichment Enrichment
}

// Enrichment carries the derived metadata for a message. Content-only
// fields (topics, quality, attempt) are filled at ingestion; chain fields
// (PreviousID, NextID, feedback links) stay nil until back-fill runs with
// the full session transcript.
type Enrichment struct {
	DetectedTopics       map[string]float64 // topic name -> score in [0, 2.0]
	PrimaryTopic         string
	TopicConfidence      float64
	SolutionQualityScore float64 // in [1.0, 3.0] once analyzed, 0 before
	IsSolutionAttempt    bool
	SolutionCategory     SolutionCategory
	PreviousID           *ID
	NextID               *ID
	RelatedSolutionID    *ID
	FeedbackID           *ID
	Sentiment            Sentiment
	IsValidated          bool
	IsRefuted            bool
	IsPartial            bool
	SolutionConfidence   float64 // in [0.3, 2.0], 1.0 when unvalidated
	ValidationStrength   float64 // signed, in [-1, 1]
	OutcomeCertainty     float64 // in [0, 1]
}

// NewEnrichment returns an Enrichment with default values for a message
// that has been analyzed but not yet validated.
func NewEnrichment() Enrichment {
	return Enrichment{SolutionConfidence: 1.0}
}

// Clone returns a deep copy of the enrichment.
func (e Enrichment) Clone() Enrichment {
	out := e
	if e.DetectedTopics != nil {
		out.DetectedTopics = make(map[string]float64, len(e.DetectedTopics))
		for k, v := range e.DetectedTopics {
			out.DetectedTopics[k] = v
		}
	}
	out.PreviousID = cloneID(e.PreviousID)
	out.NextID = cloneID(e.NextID)
	out.RelatedSolutionID = cloneID(e.RelatedSolutionID)
	out.FeedbackID = cloneID(e.FeedbackID)
	return out
}

func cloneID(id *ID) *ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Equal reports whether two enrichments carry identical values.
func (e Enrichment) Equal(other Enrichment) bool {
	if len(e.DetectedTopics) != len(other.DetectedTopics) {
		return false
	}
	for k, v := range e.DetectedTopics {
		if ov, ok := other.DetectedTopics[k]; !ok || ov != v {
			return false
		}
	}
	return e.PrimaryTopic == other.PrimaryTopic &&
		e.TopicConfidence == other.TopicConfidence &&
		e.SolutionQualityScore == other.SolutionQualityScore &&
		e.IsSolutionAttempt == other.IsSolutionAttempt &&
		e.SolutionCategory == other.SolutionCategory &&
		idEqual(e.PreviousID, other.PreviousID) &&
		idEqual(e.NextID, other.NextID) &&
		idEqual(e.RelatedSolutionID, other.RelatedSolutionID) &&
		idEqual(e.FeedbackID, other.FeedbackID) &&
		e.Sentiment == other.Sentiment &&
		e.IsValidated == other.IsValidated &&
		e.IsRefuted == other.IsRefuted &&
		e.IsPartial == other.IsPartial &&
		e.SolutionConfidence == other.SolutionConfidence &&
		e.ValidationStrength == other.ValidationStrength &&
		e.OutcomeCertainty == other.OutcomeCertainty
}

func idEqual(a, b *ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SessionState tracks how far back-fill has progressed for a session.
type SessionState int

const (
	// StateUnprocessed means no back-fill run has touched the session.
	StateUnprocessed SessionState = iota
	// StatePartiallyCovered means a run completed but some messages lack chain metadata.
	StatePartiallyCovered
	// StateFullyCovered means every message carries chain metadata.
	StateFullyCovered
	// StateNeedsRetry means the last run failed transiently and should be re-enqueued.
	StateNeedsRetry
	// StateNeedsManualReview means an adjacency invariant was violated.
	// Terminal until an operator intervenes.
	StateNeedsManualReview
)

// String returns the wire representation of the state.
func (s SessionState) String() string {
	switch s {
	case StatePartiallyCovered:
		return "partially_covered"
	case StateFullyCovered:
		return "fully_covered"
	case StateNeedsRetry:
		return "needs_retry"
	case StateNeedsManualReview:
		return "needs_manual_review"
	default:
		return "unprocessed"
	}
}

// ParseSessionState parses the wire representation of a session state.
func ParseSessionState(s string) (SessionState, error) {
	switch s {
	case "unprocessed":
		return StateUnprocessed, nil
	case "partially_covered":
		return StatePartiallyCovered, nil
	case "fully_covered":
		return StateFullyCovered, nil
	case "needs_retry":
		return StateNeedsRetry, nil
	case "needs_manual_review":
		return StateNeedsManualReview, nil
	default:
		return 0, ErrInvalidSessionState
	}
}

// Session is the unit of back-fill work: one continuous ordered transcript.
type Session struct {
	ID               string
	MessageCount     int
	State            SessionState
	ChainCoverage    float64 // fraction of messages with populated adjacency links
	FeedbackCoverage float64 // fraction of solution attempts with a feedback link
	ValidatedCount   int
	RefutedCount     int
	LastRunID        string
	LastRunAt        time.Time
	LastRunDuration  time.Duration
	InsertedAt       time.Time
	UpdatedAt        time.Time
}

// SimilarityMatch represents a message match from vector similarity search.
type SimilarityMatch struct {
	MessageId ID
	Score     float32
}
