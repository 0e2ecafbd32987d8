package testutil

import (
	"sync"
	"time"

	"github.com/kennelworks/kennelworks/internal/clock"
)

// FakeClock is a manually advanced clock for tests. Calendar
// arithmetic matches the real clock exactly; only Now is frozen.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{
		now: now,
		loc: now.Location(),
	}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) SetNow(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) NextOccurrence(hour, minute int, after time.Time) time.Time {
	return clock.NextOccurrenceIn(hour, minute, after, c.loc)
}

func (c *FakeClock) SameCalendarDay(a, b time.Time) bool {
	return clock.SameCalendarDayIn(a, b, c.loc)
}

func (c *FakeClock) Location() *time.Location {
	return c.loc
}
