package sinks

import (
	"sync"

	"github.com/plumelog/plume/core"
)

// MemorySink records rendered lines in memory. It exists for tests and
// for custom-sink examples; it implements core.Sink for either encoding.
type MemorySink struct {
	id       string
	encoding core.Encoding

	mu      sync.RWMutex
	lines   [][]byte
	flushes int
	closed  bool
}

// NewMemorySink creates a memory sink consuming the given encoding.
func NewMemorySink(id string, encoding core.Encoding) *MemorySink {
	return &MemorySink{id: id, encoding: encoding}
}

// ID returns the registry id.
func (m *MemorySink) ID() string { return m.id }

// Encoding returns the rendered form the sink consumes.
func (m *MemorySink) Encoding() core.Encoding { return m.encoding }

// Write records a copy of the rendered line.
func (m *MemorySink) Write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	line := make([]byte, len(p))
	copy(line, p)
	m.lines = append(m.lines, line)
	return nil
}

// Flush counts flushes; there is nothing to push.
func (m *MemorySink) Flush() error {
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
	return nil
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Lines returns the recorded lines as strings, in write order.
func (m *MemorySink) Lines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		out[i] = string(l)
	}
	return out
}

// Count returns the number of recorded lines.
func (m *MemorySink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}

// Flushes returns how many times Flush was called.
func (m *MemorySink) Flushes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushes
}

// Closed reports whether Close was called.
func (m *MemorySink) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
