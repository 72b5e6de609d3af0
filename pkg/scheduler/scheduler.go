// Package scheduler owns the live set of pending reminder timers. It is
// purely reactive: the presentation layer hands it the full reminder
// collection after every mutation and it rebuilds its timer set from that.
package scheduler

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/wrenlake/med-minder/pkg/models"
	"github.com/wrenlake/med-minder/pkg/recurrence"
)

// maxTimerDelay is the longest delay armed on a single timer. Delays past
// this are clamped and re-derived when the clamped timer expires, so
// far-future reminders survive without ever being dropped. The value
// mirrors the 32-bit millisecond timer cap (~24.8 days) of the platforms
// this scheduling model comes from.
const maxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond

// FireFunc receives a reminder that just came due, along with the
// display title and message to raise.
type FireFunc func(r models.Reminder, title, message string)

type pendingTimer struct {
	timer *time.Timer
	at    time.Time
}

// Scheduler maintains at most one pending timer per active reminder.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]pendingTimer
	gen     uint64
	closed  bool
	now     func() time.Time
	onFire  FireFunc
}

// New creates a Scheduler that calls onFire whenever a reminder comes due.
func New(onFire FireFunc) *Scheduler {
	return &Scheduler{
		pending: make(map[string]pendingTimer),
		now:     time.Now,
		onFire:  onFire,
	}
}

// Synchronize replaces the pending timer set with one derived from the
// given collection: every currently pending timer is cancelled, then one
// timer is armed per active reminder that still has a future occurrence.
// Full resync, no diffing; reminder counts are small.
func (s *Scheduler) Synchronize(reminders []models.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.gen++
	s.cancelAllLocked()

	for _, r := range reminders {
		if !r.IsActive {
			continue
		}
		s.armLocked(r)
	}
}

// PendingCount returns the number of live pending timers.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingAt returns the instant the given reminder's timer is scheduled
// to fire, if one is pending.
func (s *Scheduler) PendingAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok {
		return time.Time{}, false
	}
	return p.at, true
}

// Close cancels every pending timer. The scheduler cannot be reused.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() {
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// armLocked computes the reminder's next occurrence and arms a timer for
// it. Caller holds s.mu.
func (s *Scheduler) armLocked(r models.Reminder) {
	now := s.now()
	occ, ok := recurrence.Next(r, now)
	if !ok {
		if r.IsRecurring() {
			// Should be unreachable for a non-empty weekly day set;
			// log and skip rather than surface an error.
			log.Printf("No future occurrence for recurring reminder %q (%s)", r.Title, r.ID)
		}
		return
	}

	delay := occ.Sub(now)
	if delay < 0 {
		delay = 0
	}

	gen := s.gen
	var t *time.Timer
	if delay > maxTimerDelay {
		// Too far out for one timer: arm the cap and re-derive the real
		// delay when it expires, instead of firing.
		t = time.AfterFunc(maxTimerDelay, func() { s.rearm(r, gen) })
	} else {
		t = time.AfterFunc(delay, func() { s.fire(r, gen) })
	}
	s.pending[r.ID] = pendingTimer{timer: t, at: occ}
}

// rearm services a clamped long-horizon timer: recompute and arm again.
func (s *Scheduler) rearm(r models.Reminder, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	delete(s.pending, r.ID)
	s.armLocked(r)
}

// fire runs on timer expiry: deliver the alert, then re-arm recurring
// reminders so the series continues.
func (s *Scheduler) fire(r models.Reminder, gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// A Synchronize or Close superseded this timer.
		s.mu.Unlock()
		return
	}
	delete(s.pending, r.ID)
	onFire := s.onFire
	s.mu.Unlock()

	log.Printf("Reminder due: %q (%s)", r.Title, r.ID)
	if onFire != nil {
		onFire(r, r.AlertTitle(), r.AlertMessage())
	}

	if !r.IsRecurring() {
		return
	}

	s.mu.Lock()
	if !s.closed && gen == s.gen {
		s.armLocked(r)
	}
	s.mu.Unlock()
}
