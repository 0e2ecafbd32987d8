package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextOccurrenceIn(t *testing.T) {
	loc := time.UTC

	t.Run("before anchor fires same day", func(t *testing.T) {
		after := time.Date(2024, 3, 1, 9, 30, 0, 0, loc)
		next := NextOccurrenceIn(17, 30, after, loc)
		assert.Equal(t, time.Date(2024, 3, 1, 17, 30, 0, 0, loc), next)
	})

	t.Run("after anchor fires next day", func(t *testing.T) {
		after := time.Date(2024, 3, 1, 18, 0, 0, 0, loc)
		next := NextOccurrenceIn(17, 30, after, loc)
		assert.Equal(t, time.Date(2024, 3, 2, 17, 30, 0, 0, loc), next)
	})

	t.Run("exactly at anchor fires next day", func(t *testing.T) {
		// Strictly after: an anchor matching `after` to the second must
		// not fire again for the same instant.
		after := time.Date(2024, 3, 1, 17, 30, 0, 0, loc)
		next := NextOccurrenceIn(17, 30, after, loc)
		assert.Equal(t, time.Date(2024, 3, 2, 17, 30, 0, 0, loc), next)
	})

	t.Run("restart seconds after midnight waits a full day", func(t *testing.T) {
		// A process restarting at 00:00:05 must not re-run the midnight
		// job that just fired.
		after := time.Date(2024, 3, 1, 0, 0, 5, 0, loc)
		next := NextOccurrenceIn(0, 0, after, loc)
		assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), next)
	})

	t.Run("anchor stays on wall clock across dst", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata unavailable")
		}
		// US spring-forward: 2024-03-10 02:00 EST -> 03:00 EDT.
		after := time.Date(2024, 3, 9, 23, 0, 0, 0, ny)
		next := NextOccurrenceIn(21, 0, after, ny)
		assert.Equal(t, 21, next.Hour())
		assert.Equal(t, 10, next.Day())
	})
}

func TestSameCalendarDayIn(t *testing.T) {
	loc := time.UTC

	a := time.Date(2024, 3, 1, 0, 0, 1, 0, loc)
	b := time.Date(2024, 3, 1, 23, 59, 59, 0, loc)
	assert.True(t, SameCalendarDayIn(a, b, loc))

	c := time.Date(2024, 3, 2, 0, 0, 0, 0, loc)
	assert.False(t, SameCalendarDayIn(b, c, loc))
}

func TestRealClockLocation(t *testing.T) {
	clk := NewInLocation(time.UTC)
	assert.Equal(t, time.UTC, clk.Location())
	assert.True(t, clk.SameCalendarDay(clk.Now(), clk.Now()))
}
