package carousel

// startAutoplay arms a single autoplay tick. Each tick re-arms the next one
// only after it has run, so advances never overlap.
func (c *Carousel[T]) startAutoplay() {
	c.stopAutoplay()
	if !c.ready() || c.surface == nil || c.session != nil || len(c.columns) <= 1 {
		return
	}
	c.autoSeq++
	seq := c.autoSeq
	c.auto = c.sched.AfterFunc(c.cfg.AutoplayInterval, func() {
		if c.closed || seq != c.autoSeq {
			return
		}
		c.auto = nil
		c.advance()
	})
}

func (c *Carousel[T]) advance() {
	if c.session != nil || !c.ready() || len(c.columns) <= 1 {
		return
	}
	target := c.index + 1
	c.emit(Event{Kind: EventAutoplay, Index: c.index, Target: target, Offset: c.offset})
	c.MoveTo(target, true)
	c.ScheduleReconcile(target)
	c.startAutoplay()
}

func (c *Carousel[T]) stopAutoplay() {
	if c.auto != nil {
		c.auto.Stop()
		c.auto = nil
	}
	c.autoSeq++
}

// Autoplaying reports whether an autoplay tick is armed.
func (c *Carousel[T]) Autoplaying() bool { return c.auto != nil }
