package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_Transitions(t *testing.T) {
	var g Gate[int]
	assert.False(t, g.IsOpen())
	_, ok := g.Target()
	assert.False(t, ok)

	g.Open(7)
	id, ok := g.Target()
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	g.Open(8)
	id, ok = g.Close()
	assert.True(t, ok)
	assert.Equal(t, 8, id)
	assert.False(t, g.IsOpen())

	_, ok = g.Close()
	assert.False(t, ok)

	g.Open(9)
	assert.True(t, g.IsOpen())
}
