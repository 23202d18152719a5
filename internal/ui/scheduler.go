package ui

import (
	"sync"
	"time"

	"shopswipe/internal/carousel"

	tea "charm.land/bubbletea/v2"
)

type timerMsg struct {
	id uint64
}

// teaScheduler turns carousel timers into tea messages so every callback
// runs inside Update. A stopped timer's message may still be queued; fire
// drops it because the id is no longer live. Timers that fall due before a
// program is attached are held and sent on attach.
type teaScheduler struct {
	mu   sync.Mutex
	next uint64
	live map[uint64]func()
	held []uint64
	send func(tea.Msg)
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{live: map[uint64]func(){}}
}

func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) carousel.Timer {
	s.mu.Lock()
	s.next++
	id := s.next
	s.live[id] = fn
	s.mu.Unlock()

	t := time.AfterFunc(d, func() { s.deliver(id) })
	return &teaTimer{s: s, id: id, t: t}
}

func (s *teaScheduler) NextFrame(fn func()) carousel.Timer {
	return s.AfterFunc(time.Second/60, fn)
}

func (s *teaScheduler) attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	var held []uint64
	if send != nil {
		held = s.held
		s.held = nil
	}
	s.mu.Unlock()
	if len(held) == 0 {
		return
	}
	// Program.Send blocks until the event loop reads, which has not started yet.
	go func() {
		for _, id := range held {
			send(timerMsg{id: id})
		}
	}()
}

func (s *teaScheduler) deliver(id uint64) {
	s.mu.Lock()
	send := s.send
	if send == nil {
		if _, ok := s.live[id]; ok {
			s.held = append(s.held, id)
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	send(timerMsg{id: id})
}

// fire runs the callback for id if it has not been stopped. Called from Update.
func (s *teaScheduler) fire(id uint64) bool {
	s.mu.Lock()
	fn, ok := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()
	if ok && fn != nil {
		fn()
	}
	return ok
}

func (s *teaScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

type teaTimer struct {
	s  *teaScheduler
	id uint64
	t  *time.Timer
}

func (t *teaTimer) Stop() bool {
	t.t.Stop()
	t.s.mu.Lock()
	_, ok := t.s.live[t.id]
	delete(t.s.live, t.id)
	t.s.mu.Unlock()
	return ok
}
