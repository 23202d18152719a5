package devtools

import (
	"sort"
	"time"

	"shopswipe/internal/carousel"
)

type StepKind string

const (
	StepBegin  StepKind = "begin"
	StepMove   StepKind = "move"
	StepEnd    StepKind = "end"
	StepCancel StepKind = "cancel"
	StepFlick  StepKind = "flick"
	StepWait   StepKind = "wait"
)

// Step is one scripted input. At is the drag distance from the gesture's
// start offset in item widths. After is the delay since the previous step.
type Step struct {
	Kind     StepKind
	After    time.Duration
	At       float64
	Velocity float64
	Delta    int
}

type Scenario struct {
	Name        string
	Description string
	Steps       []Step
	Repeat      bool
}

// Duration is the time from the first step to the last.
func (s Scenario) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.Steps {
		d += st.After
	}
	return d
}

const frame = 16 * time.Millisecond

var scenarios = map[string]Scenario{
	"wobble": {
		Name:        "wobble",
		Description: "drag forward, wobble back, settle past the next page",
		Steps: []Step{
			{Kind: StepBegin},
			{Kind: StepMove, After: frame, At: 0.3},
			{Kind: StepMove, After: frame, At: -0.2},
			{Kind: StepMove, After: frame, At: 0.4},
			{Kind: StepMove, After: frame, At: 0.95},
			{Kind: StepEnd, After: frame},
		},
	},
	"flick_left": {
		Name:        "flick_left",
		Description: "short fast swipe toward the previous page",
		Steps: []Step{
			{Kind: StepBegin},
			{Kind: StepMove, After: frame, At: -0.01},
			{Kind: StepEnd, After: frame, Velocity: -0.3},
		},
	},
	"flick_right": {
		Name:        "flick_right",
		Description: "short fast swipe toward the next page",
		Steps: []Step{
			{Kind: StepBegin},
			{Kind: StepMove, After: frame, At: 0.01},
			{Kind: StepEnd, After: frame, Velocity: 0.3},
		},
	},
	"hesitate": {
		Name:        "hesitate",
		Description: "touch, barely move, let go",
		Steps: []Step{
			{Kind: StepBegin},
			{Kind: StepMove, After: frame, At: 0.01},
			{Kind: StepCancel, After: 200 * time.Millisecond},
		},
	},
	"keys": {
		Name:        "keys",
		Description: "three arrow presses forward, one back",
		Steps: []Step{
			{Kind: StepFlick, Delta: 1},
			{Kind: StepFlick, After: 500 * time.Millisecond, Delta: 1},
			{Kind: StepFlick, After: 500 * time.Millisecond, Delta: 1},
			{Kind: StepFlick, After: 500 * time.Millisecond, Delta: -1},
		},
	},
	"autoplay": {
		Name:        "autoplay",
		Description: "hands off; watch autoplay wrap around",
		Steps:       []Step{{Kind: StepWait, After: 10 * time.Second}},
	},
	"tour": {
		Name:        "tour",
		Description: "keys, flicks and a wobble on repeat",
		Repeat:      true,
		Steps: []Step{
			{Kind: StepFlick, After: time.Second, Delta: 1},
			{Kind: StepBegin, After: time.Second},
			{Kind: StepMove, After: frame, At: 0.01},
			{Kind: StepEnd, After: frame, Velocity: 0.3},
			{Kind: StepBegin, After: time.Second},
			{Kind: StepMove, After: frame, At: -0.01},
			{Kind: StepEnd, After: frame, Velocity: -0.3},
			{Kind: StepBegin, After: time.Second},
			{Kind: StepMove, After: frame, At: 0.3},
			{Kind: StepMove, After: frame, At: -0.2},
			{Kind: StepMove, After: frame, At: 0.95},
			{Kind: StepEnd, After: frame},
		},
	},
}

type Manager struct{}

func NewManager() *Manager { return &Manager{} }

func (m *Manager) Resolve(name string) (Scenario, bool) {
	sc, ok := scenarios[name]
	return sc, ok
}

func (m *Manager) Names() []string {
	out := make([]string, 0, len(scenarios))
	for name := range scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Play(target Target, sched carousel.Scheduler, sc Scenario, done func()) *Player {
	p := &Player{target: target, sched: sched, scenario: sc, done: done}
	p.arm()
	return p
}

// Player replays a scenario on a scheduler. Steps run on the scheduler's
// callback goroutine, the same one that owns the carousel.
type Player struct {
	target   Target
	sched    carousel.Scheduler
	scenario Scenario
	done     func()

	next     int
	origin   float64
	timer    carousel.Timer
	stopped  bool
	finished bool
	played   int
}

func (p *Player) Stop() {
	if p == nil || p.stopped {
		return
	}
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) Finished() bool { return p != nil && p.finished }

// Played counts executed steps across repeats.
func (p *Player) Played() int {
	if p == nil {
		return 0
	}
	return p.played
}

func (p *Player) arm() {
	if p.stopped {
		return
	}
	if p.next >= len(p.scenario.Steps) {
		if p.scenario.Repeat && len(p.scenario.Steps) > 0 {
			p.next = 0
		} else {
			p.finished = true
			p.timer = nil
			if p.done != nil {
				p.done()
			}
			return
		}
	}
	step := p.scenario.Steps[p.next]
	p.timer = p.sched.AfterFunc(step.After, func() {
		if p.stopped {
			return
		}
		p.run(step)
		p.next++
		p.arm()
	})
}

func (p *Player) run(step Step) {
	p.played++
	switch step.Kind {
	case StepBegin:
		p.origin = p.target.Offset()
		p.target.BeginDrag()
	case StepMove:
		p.target.OnOffsetChange(p.origin + step.At*p.target.ItemWidth())
	case StepEnd:
		p.target.EndDrag(step.Velocity)
	case StepCancel:
		p.target.CancelDrag()
	case StepFlick:
		p.target.Step(step.Delta)
	case StepWait:
	}
}
