package carousel

import "time"

const (
	DefaultColumnsPerScreen  = 2
	DefaultGroupSize         = 1
	DefaultSnapDistanceRatio = 0.02
	DefaultSnapVelocity      = 0.05
	DefaultResetDelay        = 200 * time.Millisecond
	DefaultAutoplayInterval  = 3 * time.Second
)

type Config struct {
	ColumnsPerScreen int
	// SnapDistanceRatio is the fraction of one item width a drag must cover
	// before it commits a page change.
	SnapDistanceRatio float64
	SnapVelocity      float64
	ResetDelay        time.Duration
	AutoplayInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		ColumnsPerScreen:  DefaultColumnsPerScreen,
		SnapDistanceRatio: DefaultSnapDistanceRatio,
		SnapVelocity:      DefaultSnapVelocity,
		ResetDelay:        DefaultResetDelay,
		AutoplayInterval:  DefaultAutoplayInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.ColumnsPerScreen <= 0 {
		c.ColumnsPerScreen = DefaultColumnsPerScreen
	}
	if c.SnapDistanceRatio <= 0 {
		c.SnapDistanceRatio = DefaultSnapDistanceRatio
	}
	if c.SnapVelocity <= 0 {
		c.SnapVelocity = DefaultSnapVelocity
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = DefaultResetDelay
	}
	if c.AutoplayInterval <= 0 {
		c.AutoplayInterval = DefaultAutoplayInterval
	}
	return c
}

// Column is one swipeable unit of content.
type Column[T any] struct {
	ID    string
	Items []T
}

type EventKind string

const (
	EventMove     EventKind = "move"
	EventCommit   EventKind = "commit"
	EventTeleport EventKind = "teleport"
	EventSnap     EventKind = "snap"
	EventAutoplay EventKind = "autoplay"
	EventDrag     EventKind = "drag"
	EventRelease  EventKind = "release"
)

type Event struct {
	Kind     EventKind
	Index    int
	Target   int
	Offset   float64
	Animated bool
	Velocity float64
}
