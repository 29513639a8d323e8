package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoroutine_StrictAlternation(t *testing.T) {
	var trace []string
	var c *coroutine
	c = startCoroutine(func() {
		trace = append(trace, "enter")
		c.switchBack()
		trace = append(trace, "resumed")
		c.switchBack()
		trace = append(trace, "finishing")
	})

	// nothing runs before the first switch
	assert.Empty(t, trace)

	require.NoError(t, c.switchInto())
	assert.Equal(t, []string{"enter"}, trace)
	assert.False(t, c.finished)

	require.NoError(t, c.switchInto())
	assert.Equal(t, []string{"enter", "resumed"}, trace)

	require.NoError(t, c.switchInto())
	assert.Equal(t, []string{"enter", "resumed", "finishing"}, trace)
	assert.True(t, c.finished)
}

func TestCoroutine_EntryReturnIsFinalYield(t *testing.T) {
	c := startCoroutine(func() {})
	require.NoError(t, c.switchInto())
	assert.True(t, c.finished)
}

func TestCoroutine_SwitchIntoFinished(t *testing.T) {
	c := startCoroutine(func() {})
	require.NoError(t, c.switchInto())

	err := c.switchInto()
	require.Error(t, err)
	assert.True(t, IsSwitchError(err))
}

func TestCoroutine_SwitchIntoNil(t *testing.T) {
	var c *coroutine
	err := c.switchInto()
	require.Error(t, err)
	assert.True(t, IsSwitchError(err))
}

func TestCoroutine_ValuesVisibleAcrossSwitches(t *testing.T) {
	// writes on the task flow before a yield are visible to the
	// driver after switchInto returns, with no extra synchronization
	var c *coroutine
	x := 0
	c = startCoroutine(func() {
		x = 1
		c.switchBack()
		x = 2
	})

	require.NoError(t, c.switchInto())
	assert.Equal(t, 1, x)
	require.NoError(t, c.switchInto())
	assert.Equal(t, 2, x)
}
