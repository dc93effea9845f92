package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSet(t *testing.T) {
	s := NewPositionSet()
	assert.Equal(t, 0, s.Len())

	a1 := NewPosition(0, 0)
	b2 := NewPosition(1, 1)
	s.Add(a1)
	s.Add(b2)
	s.Add(a1) // duplicate insert is a no-op

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(a1))
	assert.True(t, s.Contains(b2))
	assert.False(t, s.Contains(NewPosition(5, 5)))

	s.Remove(a1)
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Contains(a1))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestPositionSet_Sorted(t *testing.T) {
	s := NewPositionSet()
	s.Add(NewPosition(2, 0))
	s.Add(NewPosition(0, 5))
	s.Add(NewPosition(0, 1))

	got := s.Sorted()
	want := []Position{NewPosition(0, 1), NewPosition(0, 5), NewPosition(2, 0)}
	assert.Equal(t, want, got)
}

func TestDedupFirstOccurrence(t *testing.T) {
	a1 := NewPosition(0, 0)
	b2 := NewPosition(1, 1)
	c3 := NewPosition(2, 2)

	got := DedupFirstOccurrence([]Position{a1, b2, a1, c3, b2, a1})
	assert.Equal(t, []Position{a1, b2, c3}, got)
}
