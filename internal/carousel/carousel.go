package carousel

import "math"

// Carousel is the infinite-loop index/offset state machine. It is not safe
// for concurrent use: every method, and every callback it hands to its
// Scheduler, must run on one event queue.
type Carousel[T any] struct {
	cfg      Config
	sched    Scheduler
	surface  Surface
	observer func(Event)

	columns []Column[T]
	buffer  []Column[T]

	itemWidth float64
	index     int
	offset    float64

	session *gestureSession

	pending    Timer
	pendingSeq uint64
	frame      Timer
	frameSeq   uint64
	auto       Timer
	autoSeq    uint64

	closed bool
}

type Option[T any] func(*Carousel[T])

// WithObserver registers fn to receive every state machine event.
func WithObserver[T any](fn func(Event)) Option[T] {
	return func(c *Carousel[T]) { c.observer = fn }
}

func New[T any](cfg Config, sched Scheduler, opts ...Option[T]) *Carousel[T] {
	c := &Carousel[T]{
		cfg:   cfg.withDefaults(),
		sched: sched,
		index: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount attaches the surface and positions it at the committed index.
func (c *Carousel[T]) Mount(s Surface) {
	if c.closed {
		return
	}
	c.surface = s
	c.settle()
}

// Resize recomputes the item width from the measured container width.
func (c *Carousel[T]) Resize(width float64) {
	if c.closed {
		return
	}
	next := 0.0
	if width > 0 {
		next = width / float64(c.cfg.ColumnsPerScreen)
	}
	if next == c.itemWidth {
		return
	}
	c.itemWidth = next
	if next == 0 {
		c.stopAutoplay()
		return
	}
	c.settle()
}

// SetColumns replaces the real column sequence and rebuilds the loop buffer.
func (c *Carousel[T]) SetColumns(cols []Column[T]) {
	if c.closed {
		return
	}
	c.columns = append([]Column[T](nil), cols...)
	c.buffer = BuildLoopBuffer(c.columns)
	c.cancelPending()
	if len(c.columns) == 0 {
		c.stopAutoplay()
		c.index = 1
		return
	}
	if c.index < 1 || c.index > len(c.columns) {
		c.index = 1
	}
	c.settle()
}

// MoveTo scrolls the surface to target's offset. It is the only path that
// pushes a logical index to the surface.
func (c *Carousel[T]) MoveTo(target int, animated bool) {
	if !c.ready() || c.surface == nil {
		return
	}
	clamped := max(0, min(target, len(c.buffer)-1))
	offset := float64(clamped) * c.itemWidth
	c.surface.ScrollTo(offset, animated)
	c.offset = offset
	c.emit(Event{Kind: EventMove, Index: c.index, Target: clamped, Offset: offset, Animated: animated})
}

// Reconcile commits target, teleporting off a sentinel without animation.
func (c *Carousel[T]) Reconcile(target int) {
	if !c.ready() {
		return
	}
	n := len(c.columns)
	switch {
	case target <= 0:
		c.teleport(n, target)
	case target >= len(c.buffer)-1:
		c.teleport(1, target)
	default:
		c.commit(target)
	}
}

// ScheduleReconcile replaces any pending reconciliation. Sentinel targets
// wait ResetDelay so an in-flight slide can finish before the jump.
func (c *Carousel[T]) ScheduleReconcile(target int) {
	c.cancelPending()
	if c.closed {
		return
	}
	if target > 0 && target < len(c.buffer)-1 {
		c.Reconcile(target)
		return
	}
	c.pendingSeq++
	seq := c.pendingSeq
	c.pending = c.sched.AfterFunc(c.cfg.ResetDelay, func() {
		if c.closed || seq != c.pendingSeq {
			return
		}
		c.pending = nil
		c.Reconcile(target)
	})
}

// Close tears the carousel down. Callbacks already queued become no-ops.
func (c *Carousel[T]) Close() {
	if c.closed {
		return
	}
	c.stopAutoplay()
	c.cancelPending()
	c.cancelFrame()
	c.closed = true
	c.session = nil
	c.surface = nil
}

func (c *Carousel[T]) Index() int { return c.index }

func (c *Carousel[T]) DisplayIndex() int { return DisplayIndex(c.index, len(c.columns)) }

// Count is the number of real columns.
func (c *Carousel[T]) Count() int { return len(c.columns) }

// Buffer is the padded column sequence the host lays out, one view per entry.
func (c *Carousel[T]) Buffer() []Column[T] { return c.buffer }

func (c *Carousel[T]) Offset() float64 { return c.offset }

func (c *Carousel[T]) ItemWidth() float64 { return c.itemWidth }

func (c *Carousel[T]) Dragging() bool { return c.session != nil }

func (c *Carousel[T]) Config() Config { return c.cfg }

// nearest rounds an offset to the closest column index.
func (c *Carousel[T]) nearest(offset float64) int {
	return int(math.Round(offset / c.itemWidth))
}

func (c *Carousel[T]) ready() bool {
	return !c.closed && c.itemWidth > 0 && len(c.buffer) > 0
}

// settle positions the surface at the committed index on the next frame and
// (re)starts autoplay once layout, content and surface are all present.
func (c *Carousel[T]) settle() {
	if !c.ready() || c.surface == nil {
		return
	}
	c.scheduleFrame(func() { c.MoveTo(c.index, false) })
	if c.session == nil {
		c.startAutoplay()
	}
}

func (c *Carousel[T]) commit(index int) {
	c.index = index
	c.emit(Event{Kind: EventCommit, Index: index, Target: index, Offset: c.offset})
}

func (c *Carousel[T]) teleport(to, from int) {
	c.commit(to)
	c.emit(Event{Kind: EventTeleport, Index: to, Target: from, Offset: c.offset})
	c.scheduleFrame(func() { c.MoveTo(to, false) })
}

func (c *Carousel[T]) scheduleFrame(fn func()) {
	c.cancelFrame()
	c.frameSeq++
	seq := c.frameSeq
	c.frame = c.sched.NextFrame(func() {
		if c.closed || seq != c.frameSeq {
			return
		}
		c.frame = nil
		fn()
	})
}

func (c *Carousel[T]) cancelPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.pendingSeq++
}

func (c *Carousel[T]) cancelFrame() {
	if c.frame != nil {
		c.frame.Stop()
		c.frame = nil
	}
	c.frameSeq++
}

func (c *Carousel[T]) emit(ev Event) {
	if c.observer != nil {
		c.observer(ev)
	}
}
