package clock

import "time"

// Clock supplies current time and the calendar arithmetic the scheduler
// and transition engine anchor on. All calendar comparisons happen in
// the clock's location so "same day" and "next midnight" follow local
// wall-clock time, DST shifts included.
type Clock interface {
	Now() time.Time

	// NextOccurrence returns the first instant strictly after `after`
	// whose local wall-clock time reads hour:minute. Computed fresh
	// from the calendar each cycle rather than by adding a fixed
	// duration, so execution latency never accumulates as drift.
	NextOccurrence(hour, minute int, after time.Time) time.Time

	// SameCalendarDay reports whether a and b fall on the same local
	// calendar date.
	SameCalendarDay(a, b time.Time) bool

	// Location is the time zone calendar comparisons are evaluated in.
	Location() *time.Location
}

type realClock struct {
	loc *time.Location
}

// New returns a Clock evaluating calendar rules in the local time zone
func New() Clock {
	return NewInLocation(time.Local)
}

// NewInLocation returns a Clock pinned to a specific time zone
func NewInLocation(loc *time.Location) Clock {
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *realClock) NextOccurrence(hour, minute int, after time.Time) time.Time {
	return NextOccurrenceIn(hour, minute, after, c.loc)
}

func (c *realClock) SameCalendarDay(a, b time.Time) bool {
	return SameCalendarDayIn(a, b, c.loc)
}

func (c *realClock) Location() *time.Location {
	return c.loc
}

// NextOccurrenceIn is the shared implementation behind Clock
// implementations, exported so the fake clock in testutil stays in
// lockstep with the real one.
func NextOccurrenceIn(hour, minute int, after time.Time, loc *time.Location) time.Time {
	local := after.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if candidate.After(after) {
		return candidate
	}
	// Re-derive from the next calendar date instead of adding 24h so a
	// DST transition cannot shift the anchor off its wall-clock time.
	next := local.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, loc)
}

// SameCalendarDayIn reports whether a and b share a calendar date in loc
func SameCalendarDayIn(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
