package mailtool

import (
	"strings"
	"sync"
)

// DefaultLogLines is how many lines a LogSink keeps by default
const DefaultLogLines = 500

// LogSink keeps the last lines of tool output for display. It is safe for
// concurrent use; a nil *LogSink discards everything.
type LogSink struct {
	mu    sync.Mutex
	max   int
	lines []string
}

// NewLogSink creates a sink holding at most max lines
func NewLogSink(max int) *LogSink {
	if max <= 0 {
		max = DefaultLogLines
	}
	return &LogSink{max: max}
}

// Append adds text, split into lines, dropping the oldest lines past the
// limit
func (s *LogSink) Append(text string) {
	if s == nil || text == "" {
		return
	}
	text = strings.TrimSuffix(text, "\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, strings.Split(text, "\n")...)
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

// Lines returns a copy of the kept lines, oldest first
func (s *LogSink) Lines() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Tail returns the last n kept lines
func (s *LogSink) Tail(n int) []string {
	lines := s.Lines()
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// String returns the kept lines joined with newlines
func (s *LogSink) String() string {
	lines := s.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
