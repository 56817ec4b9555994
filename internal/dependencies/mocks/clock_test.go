package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMockClock_AdvanceFiresDueTimers(t *testing.T) {
	c := NewMockClock(epoch)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "two") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "one") })
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, []string{"one"}, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, []string{"one", "two"}, fired)
	assert.Equal(t, 1, c.PendingTimers())
	assert.Equal(t, epoch.Add(2*time.Second), c.Now())
}

func TestMockClock_CallbackSeesDeadline(t *testing.T) {
	c := NewMockClock(epoch)
	var seen time.Time
	c.AfterFunc(3*time.Second, func() { seen = c.Now() })

	c.Advance(10 * time.Second)

	assert.Equal(t, epoch.Add(3*time.Second), seen)
	assert.Equal(t, epoch.Add(10*time.Second), c.Now())
}

func TestMockClock_StopPreventsFiring(t *testing.T) {
	c := NewMockClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Minute)

	assert.False(t, fired)
	assert.Zero(t, c.PendingTimers())
}

func TestMockClock_CallbackSchedulesTimer(t *testing.T) {
	c := NewMockClock(epoch)
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(2 * time.Second)
	assert.Equal(t, 2, count)
}

func TestMockRandom_Queue(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(3, 7)

	assert.Equal(t, 3, r.Intn(5))
	assert.Equal(t, 2, r.Intn(5))
	assert.Equal(t, 0, r.Intn(5))

	r.Reset()
	r.QueueIntn(1)
	assert.Equal(t, 1, r.Intn(5))
}
