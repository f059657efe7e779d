package engine

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEviction(t *testing.T) {
	m := NewMemory(5)
	for i := 0; i < 7; i++ {
		m.Add(domain.Bar{Open: float64(i)})
	}

	assert.Equal(t, 5, m.Len())
	// Oldest two bars evicted, order preserved.
	data := m.Data()
	require.Len(t, data, 5)
	assert.Equal(t, 2.0, data[0].Open)
	assert.Equal(t, 6.0, data[4].Open)

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, 6.0, last.Open)
}

func TestMemoryDefaults(t *testing.T) {
	m := NewMemory(0)
	assert.Equal(t, DefaultMemoryCapacity, m.capacity)

	m = NewMemory(-3)
	assert.Equal(t, DefaultMemoryCapacity, m.capacity)
}

func TestMemoryReadiness(t *testing.T) {
	m := NewMemory(10)
	assert.False(t, m.IsReady(1))

	_, ok := m.Last()
	assert.False(t, ok)

	m.Add(domain.Bar{})
	m.Add(domain.Bar{})
	assert.True(t, m.IsReady(2))
	assert.False(t, m.IsReady(3))
}
