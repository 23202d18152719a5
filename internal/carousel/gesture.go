package carousel

// gestureSession covers one pointer-down to pointer-up interval.
type gestureSession struct {
	startOffset float64
	snapped     bool
}

// BeginDrag starts a gesture session. Autoplay and any pending
// reconciliation are cancelled for its duration.
func (c *Carousel[T]) BeginDrag() {
	if !c.ready() {
		return
	}
	c.stopAutoplay()
	c.cancelPending()
	c.session = &gestureSession{startOffset: c.offset}
	c.emit(Event{Kind: EventDrag, Index: c.index, Offset: c.offset})
}

// OnOffsetChange records the surface offset. While dragging, the first
// movement past SnapDistanceRatio of an item width commits a page change
// without waiting for release.
func (c *Carousel[T]) OnOffsetChange(offset float64) {
	c.offset = offset
	s := c.session
	if s == nil || s.snapped || !c.ready() {
		return
	}
	ratio := (offset - s.startOffset) / c.itemWidth
	dir := 0
	switch {
	case ratio > c.cfg.SnapDistanceRatio:
		dir = 1
	case ratio < -c.cfg.SnapDistanceRatio:
		dir = -1
	}
	if dir == 0 {
		return
	}
	s.snapped = true
	target := c.index + dir
	c.emit(Event{Kind: EventSnap, Index: c.index, Target: target, Offset: offset})
	c.MoveTo(target, true)
	c.ScheduleReconcile(target)
}

// EndDrag closes the session. velocity is the release velocity along the
// scroll axis, positive toward higher offsets.
func (c *Carousel[T]) EndDrag(velocity float64) {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	c.emit(Event{Kind: EventRelease, Index: c.index, Offset: c.offset, Velocity: velocity})
	if !c.ready() {
		return
	}
	if s.snapped {
		c.ScheduleReconcile(c.nearest(c.offset))
	} else {
		target := c.releaseTarget(s, velocity)
		c.MoveTo(target, true)
		c.ScheduleReconcile(target)
	}
	c.startAutoplay()
}

// CancelDrag behaves as EndDrag with no release velocity.
func (c *Carousel[T]) CancelDrag() {
	c.EndDrag(0)
}

// MomentumEnd is the settle fallback for surfaces whose release event is
// unreliable. It is ignored while a session is active.
func (c *Carousel[T]) MomentumEnd(offset float64) {
	c.offset = offset
	if c.session != nil || !c.ready() {
		return
	}
	c.ScheduleReconcile(c.nearest(offset))
}

// Step moves delta columns from the committed index, as a keyboard or wheel
// equivalent of a flick.
func (c *Carousel[T]) Step(delta int) {
	if delta == 0 || c.session != nil || !c.ready() {
		return
	}
	c.stopAutoplay()
	target := c.index + delta
	c.MoveTo(target, true)
	c.ScheduleReconcile(target)
	c.startAutoplay()
}

func (c *Carousel[T]) releaseTarget(s *gestureSession, velocity float64) int {
	ratio := (c.offset - s.startOffset) / c.itemWidth
	switch {
	case velocity > c.cfg.SnapVelocity:
		return c.index + 1
	case velocity < -c.cfg.SnapVelocity:
		return c.index - 1
	case ratio > c.cfg.SnapDistanceRatio:
		return c.index + 1
	case ratio < -c.cfg.SnapDistanceRatio:
		return c.index - 1
	default:
		return c.nearest(c.offset)
	}
}
