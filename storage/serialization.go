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


package storage

import (
	"github.com/poiesic/sift/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(message *core.Message) []byte {
	buf := make([]byte, core.MessageMUS.Size(*message))
	core.MessageMUS.Marshal(*message, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	message, _, err := core.MessageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *core.Session) []byte {
	buf := make([]byte, core.SessionMUS.Size(*session))
	core.SessionMUS.Marshal(*session, buf)
	return buf
}

// UnmarshalSession deserializes a Session from bytes.
func UnmarshalSession(data []byte) (*core.Session, error) {
	session, _, err := core.SessionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
