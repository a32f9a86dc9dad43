package sink

import (
	"sync"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

// Mock stores the most recent frame in memory instead of driving real
// hardware. It backs the mock timing regime and the broadcaster/viewer
// path in tests and non-Pi development.
type Mock struct {
	mu    sync.RWMutex
	frame []colorfx.Color
}

// NewMock creates a Mock sink.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Push(frame []colorfx.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cap(m.frame) < len(frame) {
		m.frame = make([]colorfx.Color, len(frame))
	}
	m.frame = m.frame[:len(frame)]
	copy(m.frame, frame)
	return nil
}

// Last returns a copy of the most recently pushed frame.
func (m *Mock) Last() []colorfx.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]colorfx.Color, len(m.frame))
	copy(out, m.frame)
	return out
}

func (m *Mock) Close() error { return nil }
