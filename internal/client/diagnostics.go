package client

import (
	"sync"

	"github.com/okoye/zabuza/pkg/zabuza"
)

// DiagnosticLog collects entries describing recoverable failures. It is
// append-only; callers read a copy and never truncate it.
type DiagnosticLog struct {
	mu      sync.Mutex
	entries []zabuza.DiagnosticEntry
}

// NewDiagnosticLog creates an empty log.
func NewDiagnosticLog() *DiagnosticLog {
	return &DiagnosticLog{}
}

// Append records an entry.
func (l *DiagnosticLog) Append(entry zabuza.DiagnosticEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
}

// Entries returns a copy of everything recorded so far, oldest first.
func (l *DiagnosticLog) Entries() []zabuza.DiagnosticEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]zabuza.DiagnosticEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Len reports the number of recorded entries.
func (l *DiagnosticLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}
