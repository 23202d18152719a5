package ui

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"shopswipe/internal/carousel"
	"shopswipe/internal/devtools"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	clog "github.com/charmbracelet/log"
)

type applyMsg struct {
	fn func(*Root)
}

type animateMsg struct{}

type shopKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Up     key.Binding
	Down   key.Binding
	Focus  key.Binding
	Add    key.Binding
	Inc    key.Binding
	Dec    key.Binding
	Remove key.Binding
	Clear  key.Binding
	Theme  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k shopKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Add, k.Remove, k.Theme, k.Help, k.Quit}
}

func (k shopKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Up, k.Down},
		{k.Focus, k.Add, k.Inc, k.Dec},
		{k.Remove, k.Clear, k.Theme, k.Help, k.Quit},
	}
}

func defaultKeyMap() shopKeyMap {
	return shopKeyMap{
		Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
		Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "products/cart")),
		Add:    key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter", "add")),
		Inc:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
		Dec:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less")),
		Remove: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Clear:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear cart")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	ctrl         Controller
	styleVariant string
	motionLevel  string
	mouseScope   string

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int

	products     []ProductRow
	slides       []Slide
	groupSize    int
	cart         CartState
	focus        Focus
	productIndex int
	cartIndex    int

	noticeTitle string
	noticeText  string
	statusFlash string
	saving      bool
	spinning    bool
	page        int

	car     *carousel.Carousel[Slide]
	vp      *viewport
	sched   carousel.Scheduler
	timers  *teaScheduler
	ticking bool

	demos       *devtools.Manager
	player      *devtools.Player
	pendingDemo *devtools.Scenario
	demoName    string

	help     help.Model
	keymap   shopKeyMap
	stock    progress.Model
	saveSpin spinner.Model
	markdown *glamour.TermRenderer
	mdWidth  int
	mdCache  map[int]string
	logger   *clog.Logger

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
	MouseScope   string
	Carousel     carousel.Config
	// Scheduler overrides the tea-backed timer bridge, for driving the
	// carousel on a virtual clock.
	Scheduler  carousel.Scheduler
	DiagWriter io.Writer
}

func New(opts Options) *Root {
	diag := opts.DiagWriter
	if diag == nil {
		diag = os.Stderr
	}
	logger := clog.NewWithOptions(diag, clog.Options{Prefix: "shopswipe-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	theme := ThemeForVariant(styleVariant)

	r := &Root{
		theme:        theme,
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		mouseScope:   normalizeMouseScope(opts.MouseScope),
		layout:       LayoutWide,
		cols:         120,
		rows:         30,
		groupSize:    1,
		help:         h,
		keymap:       defaultKeyMap(),
		mdCache:      map[int]string{},
		logger:       logger,
		vp:           newViewport(motionLevel),
		demos:        devtools.NewManager(),
	}
	r.applyThemeWidgets()

	r.sched = opts.Scheduler
	if r.sched == nil {
		r.timers = newTeaScheduler()
		r.sched = r.timers
	}
	r.car = carousel.New[Slide](opts.Carousel, r.sched, carousel.WithObserver[Slide](r.onCarouselEvent))
	r.car.Mount(r.vp)
	return r
}

func (r *Root) applyThemeWidgets() {
	r.stock = progress.New(
		progress.WithWidth(20),
		progress.WithColors(r.theme.Meter[0], r.theme.Meter[1]),
		progress.WithScaled(true),
	)
	if r.motionLevel == "off" {
		r.stock.SetSpringOptions(1000.0, 1.0)
	}
	r.saveSpin = spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(r.theme.Accent),
	)
	r.markdown = nil
	r.mdWidth = 0
	r.mdCache = map[int]string{}
}

func (r *Root) Init() tea.Cmd {
	return nil
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	model, cmd = r.handle(msg)
	r.syncSurface()
	return model, tea.Batch(cmd, r.animateIfNeeded())
}

func (r *Root) handle(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.help.SetWidth(max(1, r.cols))
		r.resizeBand()
		r.startPendingDemo()
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.spinIfNeeded()
	case timerMsg:
		if r.timers != nil {
			r.timers.fire(msg.id)
		}
		return r, nil
	case animateMsg:
		r.ticking = false
		r.vp.tick()
		return r, nil
	case spinner.TickMsg:
		if !r.saving {
			r.spinning = false
			return r, nil
		}
		var cmd tea.Cmd
		r.saveSpin, cmd = r.saveSpin.Update(msg)
		return r, cmd
	case tea.BlurMsg:
		if r.dragging() {
			r.cancelDrag()
		}
		return r, nil
	case tea.MouseClickMsg:
		return r.handleMouseClick(msg)
	case tea.MouseMotionMsg:
		return r.handleMouseMotion(msg)
	case tea.MouseReleaseMsg:
		return r.handleMouseRelease(msg)
	case tea.MouseWheelMsg:
		return r.handleMouseWheel(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			if r.statusFlash == "" {
				r.statusFlash = "Recovered UI panic"
			}
			view = tea.NewView(r.theme.Warn.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}

	base := r.renderScreen()
	if r.noticeText != "" {
		base = composeOverlay(base, r.renderNotice(), r.cols, r.rows)
	}
	v := tea.NewView(base)
	v.AltScreen = true
	v.MouseMode = r.currentMouseMode()
	v.ReportFocus = true
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	if r.timers != nil {
		r.timers.attach(p.Send)
	}
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	if r.timers != nil {
		r.timers.attach(nil)
	}
	r.mu.Unlock()
	r.player.Stop()
	r.car.Close()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetProducts(rows []ProductRow) {
	r.apply(func(m *Root) {
		m.products = append([]ProductRow(nil), rows...)
		if m.productIndex >= len(m.products) {
			m.productIndex = max(0, len(m.products)-1)
		}
		m.mdCache = map[int]string{}
	})
}

func (r *Root) SetSlides(slides []Slide, groupSize int) {
	r.apply(func(m *Root) {
		m.slides = append([]Slide(nil), slides...)
		m.groupSize = max(1, groupSize)
		m.page = 0
		m.car.SetColumns(carousel.GroupColumns(m.slides, m.groupSize, func(s Slide) string { return s.ID }))
		m.startPendingDemo()
	})
}

func (r *Root) SetCart(state CartState) {
	r.apply(func(m *Root) {
		m.cart = state
		if m.cartIndex >= len(m.cart.Lines) {
			m.cartIndex = max(0, len(m.cart.Lines)-1)
		}
	})
}

func (r *Root) SetSaving(saving bool) {
	r.apply(func(m *Root) {
		m.saving = saving
	})
}

func (r *Root) ShowNotice(title, text string) {
	r.apply(func(m *Root) {
		m.noticeTitle = title
		m.noticeText = text
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) SetStyleVariant(variant string) {
	r.apply(func(m *Root) {
		m.setStyle(normalizeStyleVariant(variant))
	})
}

// PlayDemo replays a named gesture scenario on the carousel. It reports
// whether the scenario exists. Playback waits until the carousel has been
// measured and has content.
func (r *Root) PlayDemo(name string) bool {
	sc, ok := r.demos.Resolve(name)
	if !ok {
		return false
	}
	r.apply(func(m *Root) {
		m.player.Stop()
		m.player = nil
		m.demoName = sc.Name
		m.pendingDemo = &sc
		m.startPendingDemo()
	})
	return true
}

func (r *Root) startPendingDemo() {
	sc := r.pendingDemo
	if sc == nil || r.car.ItemWidth() <= 0 || r.car.Count() == 0 {
		return
	}
	r.pendingDemo = nil
	// Scripted drags are relative to the resting offset, so place the
	// surface now rather than on the mount frame.
	r.car.MoveTo(r.car.Index(), false)
	name := sc.Name
	r.player = r.demos.Play(demoTarget{r: r}, r.sched, *sc, func() {
		r.demoName = ""
		r.statusFlash = "Demo " + name + " finished"
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		r.syncSurface()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) setStyle(variant string) {
	if variant == r.styleVariant {
		return
	}
	r.styleVariant = variant
	r.theme = ThemeForVariant(variant)
	r.applyThemeWidgets()
	if variant == "daylight" {
		r.help.Styles = help.DefaultLightStyles()
	} else {
		r.help.Styles = help.DefaultDarkStyles()
	}
}

func (r *Root) resizeBand() {
	if r.layout == LayoutTooSmall {
		r.car.Resize(0)
		return
	}
	r.car.Resize(float64(r.cols))
}

// syncSurface reports viewport motion to the carousel. It runs after each
// message so the carousel is never re-entered from inside ScrollTo.
func (r *Root) syncSurface() {
	if r.vp.takeChanged() {
		r.car.OnOffsetChange(r.vp.offset)
	}
	if r.vp.takeSettled() {
		r.car.MomentumEnd(r.vp.offset)
	}
}

func (r *Root) onCarouselEvent(ev carousel.Event) {
	r.logger.Debug("carousel", "event", ev.Kind, "index", ev.Index, "target", ev.Target, "offset", ev.Offset, "animated", ev.Animated, "velocity", ev.Velocity)
	if ev.Kind != carousel.EventCommit {
		return
	}
	page := r.car.DisplayIndex()
	if page == r.page {
		return
	}
	r.page = page
	count := r.car.Count()
	var ids []string
	if buf := r.car.Buffer(); page > 0 && page < len(buf) {
		for _, s := range buf[page].Items {
			ids = append(ids, s.ID)
		}
	}
	r.dispatchController(func(c Controller) { c.OnSlideChanged(page, count, ids) })
}

func (r *Root) beginDrag(x int) {
	r.player.Stop()
	r.vp.grab(x)
	r.car.OnOffsetChange(r.vp.resting())
	r.car.BeginDrag()
}

func (r *Root) endDrag(velocity float64) {
	moved := r.vp.userMoved
	r.vp.userMoved = false
	r.car.EndDrag(velocity)
	if moved {
		r.vp.align(r.car.ItemWidth())
	}
}

func (r *Root) cancelDrag() {
	r.vp.release()
	moved := r.vp.userMoved
	r.vp.userMoved = false
	r.car.CancelDrag()
	if moved {
		r.vp.align(r.car.ItemWidth())
	}
}

func (r *Root) dragging() bool {
	return r.vp.grabbed
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if !r.vp.animating || r.ticking {
		return nil
	}
	r.ticking = true
	return animateTickCmd()
}

func (r *Root) spinIfNeeded() tea.Cmd {
	if !r.saving || r.spinning {
		return nil
	}
	r.spinning = true
	return spinnerTickCmd(r.saveSpin)
}

func (r *Root) selectedProduct() (ProductRow, bool) {
	if len(r.products) == 0 {
		return ProductRow{}, false
	}
	return r.products[wrapIndex(r.productIndex, len(r.products))], true
}

func (r *Root) selectedCartLine() (CartLineRow, bool) {
	if len(r.cart.Lines) == 0 {
		return CartLineRow{}, false
	}
	return r.cart.Lines[wrapIndex(r.cartIndex, len(r.cart.Lines))], true
}

// selectedID is the product the cart keys act on for the focused panel.
func (r *Root) selectedID() (int, bool) {
	if r.focus == FocusCart {
		line, ok := r.selectedCartLine()
		return line.ProductID, ok
	}
	p, ok := r.selectedProduct()
	return p.ID, ok
}

func (r *Root) moveSelection(delta int) {
	if r.focus == FocusCart {
		r.cartIndex = wrapIndex(r.cartIndex+delta, len(r.cart.Lines))
		return
	}
	r.productIndex = wrapIndex(r.productIndex+delta, len(r.products))
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(carousel.FrameInterval, func(time.Time) tea.Msg { return animateMsg{} })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func (r *Root) currentMouseMode() tea.MouseMode {
	if r.mouseScope == "off" {
		return tea.MouseModeNone
	}
	return tea.MouseModeCellMotion
}

func normalizeStyleVariant(v string) string {
	v = strings.TrimSpace(v)
	for _, known := range styleVariants {
		if v == known {
			return v
		}
	}
	return styleVariants[0]
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func normalizeMouseScope(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "scoped", "full":
		return strings.TrimSpace(v)
	default:
		return "scoped"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"messageType", msgType,
		"layout", r.layout,
		"cols", r.cols,
		"rows", r.rows,
		"last_input", r.lastInputEvent,
		"stack", string(debug.Stack()),
	)
}

// demoTarget lets a scripted scenario drive the same path as the mouse.
type demoTarget struct {
	r *Root
}

func (d demoTarget) BeginDrag() {
	d.r.vp.grab(0)
	d.r.car.OnOffsetChange(d.r.vp.resting())
	d.r.car.BeginDrag()
}

func (d demoTarget) OnOffsetChange(offset float64) {
	d.r.vp.dragTo(offset)
	d.r.syncSurface()
}

func (d demoTarget) EndDrag(velocity float64) {
	d.r.vp.release()
	d.r.endDrag(velocity)
}

func (d demoTarget) CancelDrag() {
	d.r.cancelDrag()
}

func (d demoTarget) Step(delta int)     { d.r.car.Step(delta) }
func (d demoTarget) Offset() float64    { return d.r.vp.resting() }
func (d demoTarget) ItemWidth() float64 { return d.r.car.ItemWidth() }

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
var _ devtools.Target = demoTarget{}
