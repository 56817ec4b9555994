package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_AfterFunc(t *testing.T) {
	c := New()
	fired := make(chan time.Time, 1)
	start := c.Now()

	c.AfterFunc(10*time.Millisecond, func() { fired <- c.Now() })

	select {
	case at := <-fired:
		assert.GreaterOrEqual(t, at.Sub(start), 10*time.Millisecond)
	case <-time.After(time.Second):
		require.Fail(t, "timer did not fire")
	}
}

func TestRealClock_AfterFuncStop(t *testing.T) {
	c := New()
	fired := make(chan struct{}, 1)

	timer := c.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	select {
	case <-fired:
		require.Fail(t, "stopped timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}
