package ui

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"shopswipe/internal/carousel"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
)

type pageChange struct {
	Page  int
	Count int
	IDs   []string
}

type mockController struct {
	mu      sync.Mutex
	adds    []int
	incs    []int
	decs    []int
	removes []int
	clears  int
	pages   []pageChange
	styles  []string
	quits   int
}

func (m *mockController) OnAddToCart(id int) {
	m.mu.Lock()
	m.adds = append(m.adds, id)
	m.mu.Unlock()
}

func (m *mockController) OnIncrease(id int) {
	m.mu.Lock()
	m.incs = append(m.incs, id)
	m.mu.Unlock()
}

func (m *mockController) OnDecrease(id int) {
	m.mu.Lock()
	m.decs = append(m.decs, id)
	m.mu.Unlock()
}

func (m *mockController) OnRemove(id int) {
	m.mu.Lock()
	m.removes = append(m.removes, id)
	m.mu.Unlock()
}

func (m *mockController) OnClear() {
	m.mu.Lock()
	m.clears++
	m.mu.Unlock()
}

func (m *mockController) OnSlideChanged(page, count int, ids []string) {
	m.mu.Lock()
	m.pages = append(m.pages, pageChange{Page: page, Count: count, IDs: ids})
	m.mu.Unlock()
}

func (m *mockController) OnStyleChanged(variant string) {
	m.mu.Lock()
	m.styles = append(m.styles, variant)
	m.mu.Unlock()
}

func (m *mockController) OnQuit() {
	m.mu.Lock()
	m.quits++
	m.mu.Unlock()
}

func (m *mockController) snapshot() *mockController {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &mockController{
		adds:    append([]int(nil), m.adds...),
		incs:    append([]int(nil), m.incs...),
		decs:    append([]int(nil), m.decs...),
		removes: append([]int(nil), m.removes...),
		clears:  m.clears,
		pages:   append([]pageChange(nil), m.pages...),
		styles:  append([]string(nil), m.styles...),
		quits:   m.quits,
	}
}

// waitFor polls the controller until cond holds; callbacks run on their own
// goroutines.
func waitFor(t *testing.T, ctrl *mockController, what string, cond func(*mockController) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond(ctrl.snapshot()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s: %#v", what, ctrl.snapshot())
}

var testSlides = []Slide{
	{ID: "a", Title: "Slide A", ProductID: 1},
	{ID: "b", Title: "Slide B", ProductID: 2},
	{ID: "c", Title: "Slide C", ProductID: 3},
	{ID: "d", Title: "Slide D", ProductID: 1},
}

var testProducts = []ProductRow{
	{ID: 1, Name: "iPhone 15", PriceLabel: "¥799", Stock: 2},
	{ID: 2, Name: "MacBook Air", PriceLabel: "¥1,199", Stock: 3, InCart: 1},
	{ID: 3, Name: "AirPods Pro", PriceLabel: "¥249", Stock: 6},
}

func newTestRoot(t *testing.T, motion string) (*Root, *carousel.ManualScheduler, *mockController) {
	t.Helper()
	sched := carousel.NewManualScheduler()
	r := New(Options{ASCIIOnly: true, MotionLevel: motion, Scheduler: sched, DiagWriter: io.Discard})
	ctrl := &mockController{}
	r.SetController(ctrl)
	r.SetProducts(testProducts)
	r.SetSlides(testSlides, 1)
	r.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	sched.Advance(carousel.FrameInterval)
	if r.car.ItemWidth() != 60 || r.vp.offset != 60 {
		t.Fatalf("expected mounted carousel at offset 60, got width %v offset %v", r.car.ItemWidth(), r.vp.offset)
	}
	return r, sched, ctrl
}

func settle(t *testing.T, r *Root) {
	t.Helper()
	for i := 0; i < 600 && r.vp.animating; i++ {
		r.Update(animateMsg{})
	}
	if r.vp.animating {
		t.Fatalf("viewport did not settle, offset %v target %v", r.vp.offset, r.vp.target)
	}
}

func press(r *Root, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := r.Update(k)
	return cmd
}

func TestArrowKeysStepAndReportPages(t *testing.T) {
	r, _, ctrl := newTestRoot(t, "full")

	press(r, tea.KeyPressMsg{Code: tea.KeyRight})
	settle(t, r)
	if r.car.DisplayIndex() != 2 || r.vp.offset != 120 {
		t.Fatalf("expected page 2 at offset 120, got %d at %v", r.car.DisplayIndex(), r.vp.offset)
	}
	waitFor(t, ctrl, "page 2", func(m *mockController) bool { return len(m.pages) == 1 })
	if diff := cmp.Diff(pageChange{Page: 2, Count: 4, IDs: []string{"b"}}, ctrl.snapshot().pages[0]); diff != "" {
		t.Fatalf("page change mismatch (-want +got):\n%s", diff)
	}
}

func TestLeftFromFirstPageWrapsToLast(t *testing.T) {
	r, sched, ctrl := newTestRoot(t, "full")

	press(r, tea.KeyPressMsg{Code: tea.KeyLeft})
	settle(t, r)
	if r.vp.offset != 0 {
		t.Fatalf("expected slide onto leading sentinel, got %v", r.vp.offset)
	}
	sched.Advance(200*time.Millisecond + carousel.FrameInterval)
	if r.car.Index() != 4 || r.vp.offset != 240 {
		t.Fatalf("expected teleport to index 4 at 240, got %d at %v", r.car.Index(), r.vp.offset)
	}
	waitFor(t, ctrl, "page 4", func(m *mockController) bool {
		return len(m.pages) == 1 && m.pages[0].Page == 4
	})
}

func TestMouseDragSnapsOnce(t *testing.T) {
	r, _, ctrl := newTestRoot(t, "full")
	y := r.geometry().bandTop + 3

	r.Update(tea.MouseClickMsg{X: 100, Y: y, Button: tea.MouseLeft})
	if !r.car.Dragging() {
		t.Fatalf("expected drag session after click in band")
	}
	if r.car.Autoplaying() {
		t.Fatalf("expected autoplay to stop during drag")
	}
	r.Update(tea.MouseMotionMsg{X: 90, Y: y})
	if r.car.Index() != 2 {
		t.Fatalf("expected early snap to index 2, got %d", r.car.Index())
	}
	r.Update(tea.MouseMotionMsg{X: 20, Y: y})
	r.Update(tea.MouseReleaseMsg{X: 20, Y: y})
	settle(t, r)

	if r.car.Dragging() || r.car.Index() != 2 || r.vp.offset != 120 {
		t.Fatalf("expected settled on index 2 at 120, got dragging=%v index=%d offset=%v", r.car.Dragging(), r.car.Index(), r.vp.offset)
	}
	if !r.car.Autoplaying() {
		t.Fatalf("expected autoplay to resume after release")
	}
	waitFor(t, ctrl, "page 2", func(m *mockController) bool { return len(m.pages) == 1 && m.pages[0].Page == 2 })
}

func TestBlurCancelsDrag(t *testing.T) {
	r, _, _ := newTestRoot(t, "off")
	y := r.geometry().bandTop + 3
	r.Update(tea.MouseClickMsg{X: 60, Y: y, Button: tea.MouseLeft})
	r.Update(tea.BlurMsg{})
	if r.car.Dragging() || r.dragging() {
		t.Fatalf("expected blur to end the drag")
	}
	if r.car.Index() != 1 || r.vp.offset != 60 {
		t.Fatalf("expected to stay on index 1, got %d at %v", r.car.Index(), r.vp.offset)
	}
}

func TestCartKeysDispatchToController(t *testing.T) {
	r, _, ctrl := newTestRoot(t, "off")
	r.SetCart(CartState{Lines: []CartLineRow{{ProductID: 2, Name: "MacBook Air", Quantity: 1}}, Count: 1, TotalLabel: "¥1,199"})

	press(r, tea.KeyPressMsg{Code: tea.KeyEnter})
	press(r, tea.KeyPressMsg{Code: 'x', Text: "x"})
	if r.statusFlash != "iPhone 15 is not in the cart" {
		t.Fatalf("unexpected flash %q", r.statusFlash)
	}
	press(r, tea.KeyPressMsg{Code: tea.KeyTab})
	press(r, tea.KeyPressMsg{Code: '+', Text: "+"})
	press(r, tea.KeyPressMsg{Code: '-', Text: "-"})
	press(r, tea.KeyPressMsg{Code: 'x', Text: "x"})
	press(r, tea.KeyPressMsg{Code: 'C', Text: "C"})

	waitFor(t, ctrl, "cart callbacks", func(m *mockController) bool {
		return len(m.adds) == 1 && len(m.incs) == 1 && len(m.decs) == 1 && len(m.removes) == 1 && m.clears == 1
	})
	got := ctrl.snapshot()
	if got.adds[0] != 1 || got.incs[0] != 2 || got.decs[0] != 2 || got.removes[0] != 2 {
		t.Fatalf("unexpected product ids %#v", got)
	}
}

func TestNoticeSwallowsKeysUntilDismissed(t *testing.T) {
	r, _, ctrl := newTestRoot(t, "off")
	r.ShowNotice("Out of stock", "Insufficient stock")

	press(r, tea.KeyPressMsg{Code: tea.KeyRight})
	if r.car.Index() != 1 {
		t.Fatalf("expected keys to be swallowed while the notice is open")
	}
	press(r, tea.KeyPressMsg{Code: tea.KeyEscape})
	if r.noticeText != "" {
		t.Fatalf("expected notice to be dismissed")
	}
	press(r, tea.KeyPressMsg{Code: tea.KeyEnter})
	waitFor(t, ctrl, "add after dismiss", func(m *mockController) bool { return len(m.adds) == 1 })
}

func TestThemeKeyCyclesAndReports(t *testing.T) {
	r, _, ctrl := newTestRoot(t, "off")
	press(r, tea.KeyPressMsg{Code: 't', Text: "t"})
	if r.styleVariant != "daylight" || r.theme.Name != "daylight" {
		t.Fatalf("expected daylight theme, got %q", r.styleVariant)
	}
	waitFor(t, ctrl, "style change", func(m *mockController) bool {
		return len(m.styles) == 1 && m.styles[0] == "daylight"
	})
}

func TestQuitWithoutControllerQuitsProgram(t *testing.T) {
	sched := carousel.NewManualScheduler()
	r := New(Options{Scheduler: sched, DiagWriter: io.Discard})
	cmd := press(r, tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestRenderShowsVisibleColumnsAndBadge(t *testing.T) {
	r, _, _ := newTestRoot(t, "off")
	screen := ansi.Strip(r.renderScreen())
	for _, want := range []string{"Featured", "1/4", "Slide A", "Slide B", "iPhone 15", "6 left"} {
		if !strings.Contains(screen, want) {
			t.Fatalf("expected %q on screen:\n%s", want, screen)
		}
	}
	if strings.Contains(screen, "Slide C") {
		t.Fatalf("did not expect off-screen column on screen:\n%s", screen)
	}
	if lines := strings.Split(screen, "\n"); len(lines) != 30 {
		t.Fatalf("expected 30 rows, got %d", len(lines))
	}
}

func TestTooSmallWindowPausesCarousel(t *testing.T) {
	r, _, _ := newTestRoot(t, "off")
	r.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if r.car.ItemWidth() != 0 || r.car.Autoplaying() {
		t.Fatalf("expected carousel to pause in a too-small window")
	}
	if !strings.Contains(ansi.Strip(r.renderScreen()), "Window too small") {
		t.Fatalf("expected resize prompt")
	}
}

func TestDemoDrivesCarouselAndStopsOnKey(t *testing.T) {
	r, sched, _ := newTestRoot(t, "off")
	if r.PlayDemo("missing") {
		t.Fatalf("expected unknown demo to be rejected")
	}
	if !r.PlayDemo("keys") {
		t.Fatalf("expected keys demo")
	}
	sched.Advance(100 * time.Millisecond)
	if r.car.Index() != 2 {
		t.Fatalf("expected first demo step, got index %d", r.car.Index())
	}
	press(r, tea.KeyPressMsg{Code: tea.KeyDown})
	if r.demoName != "" || !strings.Contains(r.statusFlash, "stopped") {
		t.Fatalf("expected key to stop the demo, flash %q", r.statusFlash)
	}
	sched.Advance(time.Second)
	if r.car.Index() != 2 {
		t.Fatalf("expected no demo steps after stop, got index %d", r.car.Index())
	}
}

func TestDemoRequestedBeforeStartPlaysOnceAttachedAndSized(t *testing.T) {
	r := New(Options{ASCIIOnly: true, MotionLevel: "off", DiagWriter: io.Discard})
	t.Cleanup(func() { r.car.Close() })
	r.SetSlides(testSlides, 1)
	if !r.PlayDemo("keys") {
		t.Fatalf("expected keys demo")
	}
	if r.player != nil || r.demoName != "keys" {
		t.Fatalf("expected demo to wait for a measured carousel")
	}
	time.Sleep(5 * time.Millisecond)

	msgs := make(chan tea.Msg, 64)
	r.timers.attach(func(m tea.Msg) { msgs <- m })
	r.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	if r.player == nil {
		t.Fatalf("expected demo to start once the carousel is sized")
	}

	deadline := time.After(3 * time.Second)
	for r.car.Index() < 3 {
		select {
		case m := <-msgs:
			r.Update(m)
		case <-deadline:
			t.Fatalf("demo did not advance, index %d, played %d", r.car.Index(), r.player.Played())
		}
	}
	if r.player.Played() < 2 {
		t.Fatalf("expected at least two demo steps, got %d", r.player.Played())
	}
}

func TestLongDragCommitsTheColumnTheSurfaceRestsOn(t *testing.T) {
	r, _, _ := newTestRoot(t, "off")
	y := r.geometry().bandTop + 3

	r.Update(tea.MouseClickMsg{X: 100, Y: y, Button: tea.MouseLeft})
	r.Update(tea.MouseMotionMsg{X: 90, Y: y})
	if r.car.Index() != 2 || r.vp.offset != 120 {
		t.Fatalf("expected instant snap to index 2, got %d at %v", r.car.Index(), r.vp.offset)
	}
	// The grab re-anchors after the jump and keeps following the pointer.
	r.Update(tea.MouseMotionMsg{X: 10, Y: y})
	if r.vp.offset != 200 {
		t.Fatalf("expected drag to continue past the snap, got %v", r.vp.offset)
	}
	r.Update(tea.MouseReleaseMsg{X: 10, Y: y})

	if r.car.Dragging() || r.vp.animating {
		t.Fatalf("expected gesture to be over")
	}
	if r.car.Index() != 3 || r.vp.offset != 180 {
		t.Fatalf("expected index 3 at 180, got %d at %v", r.car.Index(), r.vp.offset)
	}
	if r.vp.offset != float64(r.car.Index())*r.car.ItemWidth() {
		t.Fatalf("committed index %d does not match surface offset %v", r.car.Index(), r.vp.offset)
	}
}
