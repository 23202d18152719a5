package carousel

import (
	"sort"
	"time"
)

// FrameInterval is the frame period used by ManualScheduler.NextFrame.
const FrameInterval = time.Second / 60

// ManualScheduler is a virtual-clock Scheduler. Callbacks run only from
// Advance or Flush, on the caller's goroutine, in due-time order.
type ManualScheduler struct {
	now   time.Duration
	seq   uint64
	queue []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTimer{s: s, due: s.now + d, seq: s.seq, fn: fn}
	s.queue = append(s.queue, t)
	return t
}

func (s *ManualScheduler) NextFrame(fn func()) Timer {
	return s.AfterFunc(FrameInterval, fn)
}

// Now is the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Pending counts timers that have neither fired nor been stopped.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.queue {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including ones armed by callbacks during the advance.
func (s *ManualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		next := s.nextDue(end)
		if next == nil {
			break
		}
		s.now = next.due
		next.fired = true
		next.fn()
	}
	s.now = end
	s.compact()
}

// Flush fires everything currently due without moving the clock.
func (s *ManualScheduler) Flush() {
	s.Advance(0)
}

func (s *ManualScheduler) nextDue(limit time.Duration) *manualTimer {
	live := make([]*manualTimer, 0, len(s.queue))
	for _, t := range s.queue {
		if !t.stopped && !t.fired && t.due <= limit {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due == live[j].due {
			return live[i].seq < live[j].seq
		}
		return live[i].due < live[j].due
	})
	return live[0]
}

func (s *ManualScheduler) compact() {
	kept := s.queue[:0]
	for _, t := range s.queue {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	s.queue = kept
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
