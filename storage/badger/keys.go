package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/sift/core"
)

// Key prefixes for different data types
const (
	messagePrefix        = "msgrec"
	messageDatePrefix    = "msgrecd"
	messageSessionPrefix = "msgrecs"
	sessionPrefix        = "sesrec"
)

// makeMessageKey generates a key for a message by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", messagePrefix, id))
}

// makeMessageDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeMessageDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := messageDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialMessageDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialMessageDateKey(timestamp time.Time) []byte {
	prefix := messageDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeSessionPositionKey generates a composite key for the
// session-position index. Format: prefix:sessionID:position
func makeSessionPositionKey(sessionID string, position int) []byte {
	prefix := messageSessionPrefix + ":" + sessionID + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for position
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort walks positions in order
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// makePartialSessionKey generates the prefix shared by all
// session-position index entries of one session.
func makePartialSessionKey(sessionID string) []byte {
	return []byte(messageSessionPrefix + ":" + sessionID + ":")
}

// makeSessionKey generates a key for a session record by ID.
func makeSessionKey(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, sessionID))
}
