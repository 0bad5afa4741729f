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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidPosition indicates a negative transcript position.
	ErrInvalidPosition = errors.New("position cannot be negative")

	// ErrInvalidCategory indicates an unknown solution category string.
	ErrInvalidCategory = errors.New("invalid solution category")

	// ErrInvalidSentiment indicates an unknown sentiment string.
	ErrInvalidSentiment = errors.New("invalid sentiment")

	// ErrInvalidSessionState indicates an unknown session state string.
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrEmptySessionID indicates a missing session identifier.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrExtraction indicates an unparsable transcript entry.
	// The entry is skipped and the rest of the session still processes.
	ErrExtraction = errors.New("extraction failed")

	// ErrClassification indicates the analyzer or classifier failed on one
	// message. Affected fields stay at their defaults.
	ErrClassification = errors.New("classification failed")
)
