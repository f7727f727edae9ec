// Package actionlog keeps the append-only, timestamped history of analytical actions
// shown to the user.
package actionlog

import (
	"fmt"
	"sync"
	"time"
)

// TimeLayout is the timestamp format used by Entry.String.
const TimeLayout = "2006-01-02 15:04:05"

// ClearedMessage is appended right after the log is cleared.
const ClearedMessage = "Log cleared"

// Entry is one recorded action.
type Entry struct {
	Time    time.Time
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(TimeLayout), e.Message)
}

// Log is an append-only sequence of entries, oldest first. Only Clear removes entries.
type Log struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []Entry
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New returns an empty log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Append records msg with the current time, truncated to the second.
func (l *Log) Append(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Time: l.now().Truncate(time.Second), Message: msg})
}

// Appendf is Append with formatting.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Clear drops every entry and then records ClearedMessage.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	l.Append(ClearedMessage)
}

// Entries returns a copy of the entries in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len is the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Render projects the log to "[timestamp] message" lines, oldest first.
func (l *Log) Render() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
