package engine

import "priceActionBot/internal/domain"

// DefaultMemoryCapacity bounds the candle history all analysis reads from.
const DefaultMemoryCapacity = 100

// Memory is a bounded ordered history of closed bars. Oldest bars are
// evicted first once capacity is reached. It is owned by a single Engine
// and never shared across goroutines.
type Memory struct {
	bars     []domain.Bar
	capacity int
}

// NewMemory creates a memory with the given capacity; non-positive values
// fall back to DefaultMemoryCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{
		bars:     make([]domain.Bar, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a bar, evicting the oldest when over capacity.
func (m *Memory) Add(bar domain.Bar) {
	m.bars = append(m.bars, bar)
	if len(m.bars) > m.capacity {
		copy(m.bars, m.bars[len(m.bars)-m.capacity:])
		m.bars = m.bars[:m.capacity]
	}
}

// Len returns the number of bars currently held.
func (m *Memory) Len() int { return len(m.bars) }

// IsReady reports whether at least n bars are available.
func (m *Memory) IsReady(n int) bool { return len(m.bars) >= n }

// Data returns the full ordered view, oldest first. Callers must treat the
// returned slice as read-only.
func (m *Memory) Data() []domain.Bar { return m.bars }

// Last returns the most recent bar; ok is false when empty.
func (m *Memory) Last() (domain.Bar, bool) {
	if len(m.bars) == 0 {
		return domain.Bar{}, false
	}
	return m.bars[len(m.bars)-1], true
}
