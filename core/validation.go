// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// Bounds for enrichment fields. Values outside these ranges are clamped
// at the point they are produced, never persisted out of range.
const (
	MinTopicScore         = 0.1
	MaxTopicScore         = 2.0
	MinQualityScore       = 1.0
	MaxQualityScore       = 3.0
	MinSolutionConfidence = 0.3
	MaxSolutionConfidence = 2.0
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - SessionID must not be empty
//   - Contents must not be empty or whitespace-only
//   - Role must be valid (user or assistant)
//   - Position must not be negative
//   - CreatedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding worker runs)
//   - Enrichment (can be zero until analysis runs)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.SessionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptySessionID)
	}

	if strings.TrimSpace(msg.Contents) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if msg.Position < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidPosition)
	}

	if !IsValidTimestamp(msg.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}

// ClampQuality clamps a solution quality score into [1.0, 3.0].
func ClampQuality(v float64) float64 {
	return clamp(v, MinQualityScore, MaxQualityScore)
}

// ClampTopicScore caps a topic score at 2.0. Scores below the 0.1
// threshold are dropped by the analyzer, not clamped up.
func ClampTopicScore(v float64) float64 {
	if v > MaxTopicScore {
		return MaxTopicScore
	}
	return v
}

// ClampConfidence clamps a solution confidence into [0.3, 2.0].
func ClampConfidence(v float64) float64 {
	return clamp(v, MinSolutionConfidence, MaxSolutionConfidence)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
