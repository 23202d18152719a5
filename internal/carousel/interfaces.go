package carousel

import "time"

// Surface is the horizontally scrollable viewport the carousel drives.
type Surface interface {
	ScrollTo(offset float64, animated bool)
}

// Scheduler delivers deferred callbacks on the same event queue that feeds
// the carousel its input events.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	NextFrame(fn func()) Timer
}

type Timer interface {
	Stop() bool
}
