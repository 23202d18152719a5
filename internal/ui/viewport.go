package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	velocityWindow = 100 * time.Millisecond
	settleEpsilon  = 0.05
)

type dragSample struct {
	at     time.Time
	offset float64
}

// viewport is the horizontal scroll surface behind the carousel band. It
// never calls into the carousel: offset changes are collected here and the
// Root reports them after each message.
type viewport struct {
	spring  harmonica.Spring
	instant bool
	now     func() time.Time

	offset    float64
	velocity  float64
	target    float64
	animating bool

	grabbed    bool
	grabX      int
	lastX      int
	grabOffset float64
	userMoved  bool
	samples    []dragSample

	changed  bool
	aligning bool
	settled  bool
}

func newViewport(motion string) *viewport {
	v := &viewport{now: time.Now}
	switch motion {
	case "off":
		v.instant = true
	case "reduced":
		v.spring = harmonica.NewSpring(harmonica.FPS(60), 40.0, 1.0)
	default:
		v.spring = harmonica.NewSpring(harmonica.FPS(60), 24.0, 1.0)
	}
	return v
}

// ScrollTo implements carousel.Surface.
func (v *viewport) ScrollTo(offset float64, animated bool) {
	v.aligning = false
	if !animated || v.instant {
		v.jump(offset)
		return
	}
	v.target = offset
	v.animating = true
}

func (v *viewport) jump(offset float64) {
	v.offset = offset
	v.target = offset
	v.velocity = 0
	v.animating = false
	if v.grabbed {
		v.grabX = v.lastX
		v.grabOffset = offset
	}
}

// tick advances the spring one frame and reports whether it is still moving.
func (v *viewport) tick() bool {
	if !v.animating {
		return false
	}
	v.offset, v.velocity = v.spring.Update(v.offset, v.velocity, v.target)
	if math.Abs(v.offset-v.target) < settleEpsilon && math.Abs(v.velocity) < settleEpsilon {
		v.finish()
	}
	return v.animating
}

func (v *viewport) finish() {
	v.jump(v.target)
	if v.aligning {
		v.aligning = false
		v.settled = true
	}
}

// resting is where the surface will come to rest.
func (v *viewport) resting() float64 {
	if v.animating {
		return v.target
	}
	return v.offset
}

func (v *viewport) grab(x int) {
	v.grabbed = true
	v.grabX = x
	v.lastX = x
	v.grabOffset = v.resting()
	v.userMoved = false
	v.samples = v.samples[:0]
}

// follow moves the surface with the pointer. Motion is ignored while an
// animation runs; the grab is re-anchored when it settles.
func (v *viewport) follow(x int) bool {
	v.lastX = x
	if !v.grabbed {
		return false
	}
	return v.dragTo(v.grabOffset + float64(v.grabX-x))
}

func (v *viewport) dragTo(offset float64) bool {
	if !v.grabbed || v.animating || offset == v.offset {
		return false
	}
	v.offset = offset
	v.target = offset
	v.velocity = 0
	v.userMoved = true
	v.changed = true
	v.samples = append(v.samples, dragSample{at: v.now(), offset: offset})
	if len(v.samples) > 32 {
		v.samples = v.samples[len(v.samples)-32:]
	}
	return true
}

// release ends the grab and returns the pointer velocity in cells per
// millisecond, positive toward higher offsets.
func (v *viewport) release() float64 {
	v.grabbed = false
	now := v.now()
	var recent []dragSample
	for _, s := range v.samples {
		if now.Sub(s.at) <= velocityWindow {
			recent = append(recent, s)
		}
	}
	v.samples = v.samples[:0]
	if len(recent) < 2 {
		return 0
	}
	first, last := recent[0], recent[len(recent)-1]
	ms := float64(last.at.Sub(first.at)) / float64(time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return (last.offset - first.offset) / ms
}

// align snaps a hand-placed surface onto the column grid. Its settle is
// reported as a momentum end.
func (v *viewport) align(itemWidth float64) {
	if itemWidth <= 0 || v.animating {
		return
	}
	snapped := math.Round(v.offset/itemWidth) * itemWidth
	if snapped == v.offset {
		return
	}
	if v.instant {
		v.jump(snapped)
		v.settled = true
		return
	}
	v.target = snapped
	v.animating = true
	v.aligning = true
}

func (v *viewport) takeChanged() bool {
	c := v.changed
	v.changed = false
	return c
}

func (v *viewport) takeSettled() bool {
	s := v.settled
	v.settled = false
	return s
}
