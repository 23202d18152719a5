package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"shopswipe/internal/catalog"
	"shopswipe/internal/state"
	"shopswipe/internal/telemetry"
	"shopswipe/internal/ui"

	"github.com/google/go-cmp/cmp"
)

type fakeView struct {
	mu       sync.Mutex
	ctrl     ui.Controller
	products []ui.ProductRow
	slides   []ui.Slide
	group    int
	cart     ui.CartState
	notices  []string
	flashes  []string
	saves    int
	stopped  bool
	demos    []string
}

func (f *fakeView) Run() error { return nil }
func (f *fakeView) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}
func (f *fakeView) SetController(c ui.Controller) { f.ctrl = c }
func (f *fakeView) SetProducts(rows []ui.ProductRow) {
	f.mu.Lock()
	f.products = rows
	f.mu.Unlock()
}
func (f *fakeView) SetSlides(slides []ui.Slide, groupSize int) {
	f.mu.Lock()
	f.slides = slides
	f.group = groupSize
	f.mu.Unlock()
}
func (f *fakeView) SetCart(state ui.CartState) {
	f.mu.Lock()
	f.cart = state
	f.mu.Unlock()
}
func (f *fakeView) SetSaving(saving bool) {
	f.mu.Lock()
	if saving {
		f.saves++
	}
	f.mu.Unlock()
}
func (f *fakeView) ShowNotice(title, text string) {
	f.mu.Lock()
	f.notices = append(f.notices, title+": "+text)
	f.mu.Unlock()
}
func (f *fakeView) FlashStatus(msg string) {
	f.mu.Lock()
	f.flashes = append(f.flashes, msg)
	f.mu.Unlock()
}
func (f *fakeView) SetStyleVariant(string) {}
func (f *fakeView) PlayDemo(name string) bool {
	f.demos = append(f.demos, name)
	return name == "wobble"
}

type fixture struct {
	app   *App
	view  *fakeView
	store *state.SQLiteStore
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, seed []state.CartLine) fixture {
	t.Helper()
	store, err := state.NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if len(seed) > 0 {
		if err := store.SaveCart(context.Background(), seed); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logs := &bytes.Buffer{}
	view := &fakeView{}
	a := assemble(Config{}, cat, store, telemetry.NewWriterLogger(logs), view)
	return fixture{app: a, view: view, store: store, logs: logs}
}

func TestAssemblePushesCatalogToView(t *testing.T) {
	f := newFixture(t, nil)
	if f.view.ctrl != f.app {
		t.Fatalf("expected app to be registered as controller")
	}
	if len(f.view.products) != 3 || len(f.view.slides) != 15 || f.view.group != 2 {
		t.Fatalf("unexpected view state: %d products, %d slides, group %d", len(f.view.products), len(f.view.slides), f.view.group)
	}
	if got := f.view.products[1].PriceLabel; got != "¥1,199" {
		t.Fatalf("unexpected price label %q", got)
	}
	if f.view.cart.Count != 0 || f.view.cart.TotalLabel != "¥0" {
		t.Fatalf("expected empty cart, got %#v", f.view.cart)
	}
}

func TestAddPastStockShowsNoticeAndKeepsCart(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 3; i++ {
		f.app.OnAddToCart(1)
	}

	if len(f.view.notices) != 1 {
		t.Fatalf("expected one stock notice, got %#v", f.view.notices)
	}
	if !strings.Contains(f.view.notices[0], "only 2 iPhone 15") {
		t.Fatalf("unexpected notice %q", f.view.notices[0])
	}
	if f.view.cart.Count != 2 || f.view.cart.TotalLabel != "¥1,598" {
		t.Fatalf("unexpected cart state %#v", f.view.cart)
	}
	if !f.view.cart.Lines[0].AtLimit {
		t.Fatalf("expected line at stock limit")
	}
	if f.view.products[0].Remaining() != 0 {
		t.Fatalf("expected no remaining stock, got %d", f.view.products[0].Remaining())
	}

	saved, err := f.store.LoadCart(context.Background())
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if diff := cmp.Diff([]state.CartLine{{ProductID: 1, Quantity: 2}}, saved); diff != "" {
		t.Fatalf("saved cart mismatch (-want +got):\n%s", diff)
	}
	summary, err := f.store.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Events != 3 || summary.Rejected != 1 {
		t.Fatalf("unexpected event summary %#v", summary)
	}
	if !strings.Contains(f.logs.String(), `"msg":"cart.rejected"`) {
		t.Fatalf("expected rejection in log, got %s", f.logs.String())
	}
}

func TestQuantityOperations(t *testing.T) {
	f := newFixture(t, nil)
	f.app.OnAddToCart(3)
	f.app.OnIncrease(3)
	f.app.OnAddToCart(2)
	f.app.OnDecrease(3)
	if f.view.cart.Count != 2 {
		t.Fatalf("expected 2 units, got %d", f.view.cart.Count)
	}
	f.app.OnRemove(2)
	f.app.OnDecrease(3)
	if f.view.cart.Count != 0 || len(f.view.cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %#v", f.view.cart)
	}

	f.app.OnIncrease(3)
	last := f.view.flashes[len(f.view.flashes)-1]
	if last != "That item is not in the cart" {
		t.Fatalf("unexpected flash %q", last)
	}
	if len(f.view.notices) != 0 {
		t.Fatalf("unexpected notices %#v", f.view.notices)
	}
}

func TestClearEmptiesStoredCart(t *testing.T) {
	f := newFixture(t, nil)
	f.app.OnAddToCart(1)
	f.app.OnAddToCart(3)
	f.app.OnClear()
	saved, err := f.store.LoadCart(context.Background())
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("expected empty stored cart, got %#v", saved)
	}
	if f.view.saves != 3 {
		t.Fatalf("expected a save per accepted operation, got %d", f.view.saves)
	}
}

func TestRestoreClampsSavedCart(t *testing.T) {
	f := newFixture(t, []state.CartLine{{ProductID: 1, Quantity: 5}, {ProductID: 99, Quantity: 1}, {ProductID: 3, Quantity: 2}})
	want := []ui.CartLineRow{
		{ProductID: 1, Name: "iPhone 15", Quantity: 2, SubtotalLabel: "¥1,598", AtLimit: true},
		{ProductID: 3, Name: "AirPods Pro", Quantity: 2, SubtotalLabel: "¥498"},
	}
	if diff := cmp.Diff(want, f.view.cart.Lines); diff != "" {
		t.Fatalf("restored cart mismatch (-want +got):\n%s", diff)
	}
	if f.view.cart.Count != 4 {
		t.Fatalf("expected 4 units, got %d", f.view.cart.Count)
	}
}

func TestStyleChoiceIsPersisted(t *testing.T) {
	f := newFixture(t, nil)
	f.app.OnStyleChanged("receipt")

	cfg := DefaultConfig()
	if err := applySavedSettings(context.Background(), &cfg, f.store); err != nil {
		t.Fatalf("apply settings: %v", err)
	}
	if cfg.UI.StyleVariant != "receipt" {
		t.Fatalf("expected saved style, got %q", cfg.UI.StyleVariant)
	}

	explicit := DefaultConfig()
	explicit.UI.StyleVariant = "daylight"
	if err := applySavedSettings(context.Background(), &explicit, f.store); err != nil {
		t.Fatalf("apply settings: %v", err)
	}
	if explicit.UI.StyleVariant != "daylight" {
		t.Fatalf("expected explicit style to win, got %q", explicit.UI.StyleVariant)
	}
}

func TestSlideChangeAndQuit(t *testing.T) {
	f := newFixture(t, nil)
	f.app.OnSlideChanged(2, 8, []string{"3", "4"})
	if f.app.page != 2 {
		t.Fatalf("expected page 2, got %d", f.app.page)
	}
	if !strings.Contains(f.logs.String(), `"slides":"3,4"`) {
		t.Fatalf("expected page log, got %s", f.logs.String())
	}
	f.app.OnQuit()
	if !f.view.stopped {
		t.Fatalf("expected view to be stopped")
	}
}

func TestRunStartsSessionAndPlaysDemo(t *testing.T) {
	f := newFixture(t, nil)
	f.app.cfg.DemoScenario = "nope"
	if err := f.app.Run(context.Background()); err == nil {
		t.Fatalf("expected unknown demo error")
	}
	f.app.cfg.DemoScenario = "wobble"
	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"nope", "wobble"}, f.view.demos); diff != "" {
		t.Fatalf("demo mismatch (-want +got):\n%s", diff)
	}
	summary, err := f.store.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Sessions != 1 {
		t.Fatalf("expected one session row, got %d", summary.Sessions)
	}
	if !strings.Contains(f.logs.String(), `"op":"start_session"`) {
		t.Fatalf("expected duplicate session to be logged, got %s", f.logs.String())
	}
}

func TestCarouselConfigFromCatalog(t *testing.T) {
	cfg := carouselConfig(catalog.CarouselSpec{ColumnsPerScreen: 3, AutoplayMS: 1200, ResetDelayMS: 150}, 0)
	if cfg.ColumnsPerScreen != 3 || cfg.AutoplayInterval != 1200*time.Millisecond || cfg.ResetDelay != 150*time.Millisecond {
		t.Fatalf("unexpected carousel config %#v", cfg)
	}
	cfg = carouselConfig(catalog.CarouselSpec{AutoplayMS: 1200}, 5*time.Second)
	if cfg.AutoplayInterval != 5*time.Second {
		t.Fatalf("expected override autoplay, got %v", cfg.AutoplayInterval)
	}
}
