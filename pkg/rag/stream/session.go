package stream

import (
	"strings"
	"time"

	"fidesia-be/pkg/rag/sources"
)

// Session is the transient state of one in-flight streaming request:
// the text accumulated so far, the resolved citation list and the start
// timestamp. It is owned exclusively by the goroutine running the
// pipeline and is dropped when the stream ends; nothing here is shared
// across requests.
type Session struct {
	buf       strings.Builder
	sources   []sources.Reference
	fragments int
	startedAt time.Time
}

func newSession() *Session {
	return &Session{startedAt: time.Now()}
}

func (s *Session) append(fragment string) {
	s.buf.WriteString(fragment)
	s.fragments++
}

// Text returns the answer accumulated so far.
func (s *Session) Text() string {
	return s.buf.String()
}

// Fragments returns how many chunks have been appended.
func (s *Session) Fragments() int {
	return s.fragments
}

// Elapsed returns the wall-clock time since the request started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.startedAt)
}
