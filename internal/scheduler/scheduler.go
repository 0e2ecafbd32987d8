package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kennelworks/kennelworks/internal/clock"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/types"
)

// pollInterval is how often multi-time jobs compare the wall clock
// against their trigger set. One poll per minute boundary is enough to
// fire at most once per matching minute without per-trigger timers.
const pollInterval = 60 * time.Second

// Action is one job body. It runs as an independent unit of work; an
// error terminates only that firing and the next anchored occurrence
// fires regardless. Bodies must be idempotent: a slow run can overlap
// its own next firing.
type Action func(ctx context.Context) error

// HourMinute is a calendar-anchored time of day in the scheduler's
// local time zone.
type HourMinute struct {
	Hour   int
	Minute int
}

// ParseHourMinute parses an "hh:mm" anchor from configuration.
func ParseHourMinute(s string) (HourMinute, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return HourMinute{}, ierr.WithError(err).
			WithHintf("Anchor time %q must be in hh:mm format", s).
			Mark(ierr.ErrValidation)
	}
	return HourMinute{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

func (hm HourMinute) String() string {
	return fmt.Sprintf("%02d:%02d", hm.Hour, hm.Minute)
}

type dailyJob struct {
	name   string
	anchor HourMinute
	action Action
}

type pollJob struct {
	name     string
	triggers map[HourMinute]struct{}
	action   Action

	// lastFired is the last "yyyy-mm-dd hh:mm" minute this job fired
	// in, guarding the at-most-once-per-matching-minute rule.
	lastFired string
}

// due reports whether the poll job should fire at now, and records the
// firing minute when it should.
func (j *pollJob) due(now time.Time) bool {
	hm := HourMinute{Hour: now.Hour(), Minute: now.Minute()}
	if _, ok := j.triggers[hm]; !ok {
		return false
	}
	minute := now.Format("2006-01-02 15:04")
	if minute == j.lastFired {
		return false
	}
	j.lastFired = minute
	return true
}

// Scheduler fires a fixed set of jobs at calendar-anchored times. Each
// firing is dispatched as its own goroutine so the scheduling loops
// never block on job completion, and each anchor is recomputed from
// the calendar rather than from elapsed time so latency cannot
// accumulate as drift. On process restart, registration computes the
// next occurrence strictly after now: an anchor that already passed
// today waits for tomorrow instead of re-firing immediately.
type Scheduler struct {
	clock  clock.Clock
	logger *logger.Logger

	mu      sync.Mutex
	daily   []*dailyJob
	polls   []*pollJob
	started bool
}

func New(clk clock.Clock, log *logger.Logger) *Scheduler {
	return &Scheduler{
		clock:  clk,
		logger: log,
	}
}

// RegisterDailyJob pins an action to one time of day.
func (s *Scheduler) RegisterDailyJob(name string, anchor HourMinute, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = append(s.daily, &dailyJob{name: name, anchor: anchor, action: action})
}

// RegisterPollJob pins an action to several times of day sharing one
// body, matched by a minute poll instead of per-trigger timers.
func (s *Scheduler) RegisterPollJob(name string, triggers []HourMinute, action Action) {
	set := make(map[HourMinute]struct{}, len(triggers))
	for _, hm := range triggers {
		set[hm] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls = append(s.polls, &pollJob{name: name, triggers: set, action: action})
}

// Start launches the scheduling loops and returns. Cancelling ctx
// stops all timers and polls; in-flight job bodies run to completion
// or are abandoned with them.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	for _, job := range s.daily {
		go s.runDaily(ctx, job)
	}
	for _, job := range s.polls {
		go s.runPoll(ctx, job)
	}

	s.logger.Infow("scheduler started",
		"daily_jobs", len(s.daily),
		"poll_jobs", len(s.polls))
}

func (s *Scheduler) runDaily(ctx context.Context, job *dailyJob) {
	next := s.clock.NextOccurrence(job.anchor.Hour, job.anchor.Minute, s.clock.Now())
	s.logger.Infow("scheduled daily job",
		"job", job.name,
		"anchor", job.anchor.String(),
		"next_run", next)

	timer := time.NewTimer(next.Sub(s.clock.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.dispatch(ctx, job.name, job.action)
			next = s.nextRun(job.anchor, next)
			timer.Reset(next.Sub(s.clock.Now()))
		}
	}
}

// nextRun re-anchors from the scheduled instant, not from now, so a
// slow dispatch cannot push the anchor later each day. When the timer
// slept through more than a full day the scheduled instant is stale and
// re-anchoring from it would land in the past, firing once per missed
// day in a burst; missed occurrences are skipped, not caught up, so the
// anchor recomputes from now instead.
func (s *Scheduler) nextRun(anchor HourMinute, last time.Time) time.Time {
	next := s.clock.NextOccurrence(anchor.Hour, anchor.Minute, last)
	if now := s.clock.Now(); next.Before(now) {
		next = s.clock.NextOccurrence(anchor.Hour, anchor.Minute, now)
	}
	return next
}

func (s *Scheduler) runPoll(ctx context.Context, job *pollJob) {
	triggers := make([]string, 0, len(job.triggers))
	for hm := range job.triggers {
		triggers = append(triggers, hm.String())
	}
	s.logger.Infow("scheduled poll job",
		"job", job.name,
		"triggers", triggers)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if job.due(s.clock.Now()) {
				s.dispatch(ctx, job.name, job.action)
			}
		}
	}
}

// dispatch launches one firing as an independent goroutine. Errors and
// panics terminate only this firing; there is no retry before the next
// natural occurrence.
func (s *Scheduler) dispatch(ctx context.Context, name string, action Action) {
	fireCtx := types.SetActorID(context.WithoutCancel(ctx), types.SystemActorID)
	started := s.clock.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorw("job panicked",
					"job", name,
					"panic", r)
			}
		}()

		s.logger.Infow("job firing", "job", name, "fired_at", started)
		if err := action(fireCtx); err != nil {
			s.logger.Errorw("job failed",
				"job", name,
				"error", err)
			return
		}
		s.logger.Infow("job completed",
			"job", name,
			"duration", s.clock.Now().Sub(started))
	}()
}
