package devtools

import "shopswipe/internal/carousel"

type Demo interface {
	Resolve(name string) (Scenario, bool)
	Names() []string
	Play(target Target, sched carousel.Scheduler, sc Scenario, done func()) *Player
}

// Target is the gesture surface a scenario drives. *carousel.Carousel
// satisfies it; the ui wraps it so the viewport follows the scripted drag.
type Target interface {
	BeginDrag()
	OnOffsetChange(offset float64)
	EndDrag(velocity float64)
	CancelDrag()
	Step(delta int)
	Offset() float64
	ItemWidth() float64
}
