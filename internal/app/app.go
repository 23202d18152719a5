package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shopswipe/internal/carousel"
	"shopswipe/internal/cart"
	"shopswipe/internal/catalog"
	"shopswipe/internal/state"
	"shopswipe/internal/telemetry"
	"shopswipe/internal/ui"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const settingStyle = "style"

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   Store
	catalog catalog.Catalog
	cart    *cart.Cart
	view    ui.View

	sessionID string

	// mu serialises controller callbacks, which arrive on their own goroutines.
	mu   sync.Mutex
	page int
}

func New(cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	if err := applySavedSettings(context.Background(), &cfg, store); err != nil {
		logger.Warn("store.error", map[string]any{"op": "load_settings", "error": err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	view := ui.New(ui.Options{
		ASCIIOnly:    cfg.ASCIIOnly,
		Debug:        cfg.Debug,
		StyleVariant: cfg.UI.StyleVariant,
		MotionLevel:  cfg.UI.MotionLevel,
		MouseScope:   cfg.UI.MouseScope,
		Carousel:     carouselConfig(cat.Carousel, cfg.Autoplay),
	})
	return assemble(cfg, cat, store, logger, view), nil
}

// assemble wires already opened collaborators together and pushes the
// initial catalog, slides and cart into the view.
func assemble(cfg Config, cat catalog.Catalog, store Store, logger *telemetry.JSONLogger, view ui.View) *App {
	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		catalog:   cat,
		cart:      cart.New(),
		view:      view,
		sessionID: uuid.NewString(),
	}
	a.logger = logger.With(map[string]any{"session": a.sessionID})
	a.restoreCart(context.Background())
	view.SetController(a)
	view.SetSlides(slideRows(cat), cat.Carousel.GroupSize)
	a.syncView()
	return a
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{
		"catalog":  firstNonEmpty(a.catalog.Path, "embedded"),
		"products": len(a.catalog.Products),
		"slides":   len(a.catalog.Slides),
		"style":    a.cfg.UI.StyleVariant,
	})
	id, err := a.store.StartSession(ctx, state.Session{ID: a.sessionID, CatalogName: a.catalog.Name, StartTS: time.Now().UTC()})
	if err != nil {
		a.logger.Error("store.error", map[string]any{"op": "start_session", "error": err.Error()})
	} else {
		a.sessionID = id
	}

	if a.cfg.DemoScenario != "" {
		if !a.view.PlayDemo(a.cfg.DemoScenario) {
			return fmt.Errorf("unknown demo scenario %q", a.cfg.DemoScenario)
		}
		a.logger.Info("demo.start", map[string]any{"demo": a.cfg.DemoScenario})
	}

	err = a.view.Run()
	a.logger.Info("app.stop", map[string]any{"cart_units": a.cart.Count()})
	return err
}

func (a *App) Close() {
	_ = a.store.Close()
	_ = a.logger.Close()
}

func (a *App) OnAddToCart(productID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.product(productID)
	if !ok {
		a.view.FlashStatus(fmt.Sprintf("unknown product %d", productID))
		return
	}
	a.afterCartOp("add", productID, a.cart.Add(p))
}

func (a *App) OnIncrease(productID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.afterCartOp("increase", productID, a.cart.Increase(productID))
}

func (a *App) OnDecrease(productID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.afterCartOp("decrease", productID, a.cart.Decrease(productID))
}

func (a *App) OnRemove(productID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.afterCartOp("remove", productID, a.cart.Remove(productID))
}

func (a *App) OnClear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart.Clear()
	a.afterCartOp("clear", 0, nil)
}

func (a *App) OnSlideChanged(page, count int, slideIDs []string) {
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	a.logger.Info("carousel.page", map[string]any{"page": page, "count": count, "slides": strings.Join(slideIDs, ",")})
}

func (a *App) OnStyleChanged(variant string) {
	a.logger.Info("ui.style", map[string]any{"variant": variant})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.SaveSettings(ctx, map[string]string{settingStyle: variant}); err != nil {
		a.logger.Error("store.error", map[string]any{"op": "save_settings", "error": err.Error()})
	}
}

func (a *App) OnQuit() {
	a.view.Stop()
}

// afterCartOp records the outcome of one cart operation and refreshes the
// view. A rejected operation has already left the cart untouched.
func (a *App) afterCartOp(op string, productID int, opErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted := opErr == nil
	event := state.CartEvent{SessionID: a.sessionID, Op: op, ProductID: productID, Quantity: a.cart.Quantity(productID), Accepted: accepted, TS: time.Now().UTC()}
	if err := a.store.RecordCartEvent(ctx, event); err != nil {
		a.logger.Error("store.error", map[string]any{"op": "record_event", "error": err.Error()})
	}

	var stockErr *cart.StockError
	switch {
	case errors.As(opErr, &stockErr):
		a.logger.Info("cart.rejected", map[string]any{"op": op, "product": productID, "stock": stockErr.Stock})
		a.view.ShowNotice("Out of stock", stockNotice(stockErr))
		a.view.FlashStatus("Insufficient stock")
		return
	case errors.Is(opErr, cart.ErrNotInCart):
		a.view.FlashStatus("That item is not in the cart")
		return
	case opErr != nil:
		a.logger.Error("cart.error", map[string]any{"op": op, "product": productID, "error": opErr.Error()})
		a.view.FlashStatus(op + " failed: " + opErr.Error())
		return
	}

	a.logger.Info("cart."+op, map[string]any{"product": productID, "quantity": event.Quantity, "units": a.cart.Count()})
	a.syncView()
	a.persistCart(ctx)
	if op == "add" {
		if p, ok := a.product(productID); ok {
			a.view.FlashStatus("Added " + p.Name)
		}
	}
}

func (a *App) persistCart(ctx context.Context) {
	a.view.SetSaving(true)
	defer a.view.SetSaving(false)
	lines := a.cart.Lines()
	rows := make([]state.CartLine, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, state.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if err := a.store.SaveCart(ctx, rows); err != nil {
		a.logger.Error("store.error", map[string]any{"op": "save_cart", "error": err.Error()})
		a.view.FlashStatus("Could not save cart")
	}
}

func (a *App) restoreCart(ctx context.Context) {
	saved, err := a.store.LoadCart(ctx)
	if err != nil {
		a.logger.Error("store.error", map[string]any{"op": "load_cart", "error": err.Error()})
		return
	}
	lines := make([]cart.Line, 0, len(saved))
	for _, l := range saved {
		lines = append(lines, cart.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	a.cart.Restore(lines, a.cartProducts())
	if len(lines) > 0 {
		a.logger.Info("cart.restored", map[string]any{"lines": len(lines), "units": a.cart.Count()})
	}
}

func (a *App) syncView() {
	a.view.SetProducts(a.productRows())
	a.view.SetCart(a.cartState())
}

func (a *App) productRows() []ui.ProductRow {
	rows := make([]ui.ProductRow, 0, len(a.catalog.Products))
	for _, p := range a.catalog.Products {
		rows = append(rows, ui.ProductRow{
			ID:            p.ID,
			Name:          p.Name,
			PriceLabel:    a.price(p.Price),
			Stock:         p.Stock,
			InCart:        a.cart.Quantity(p.ID),
			DescriptionMD: p.DescriptionMD,
		})
	}
	return rows
}

func (a *App) cartState() ui.CartState {
	items := a.cart.Items()
	rows := make([]ui.CartLineRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, ui.CartLineRow{
			ProductID:     it.ID,
			Name:          it.Name,
			Quantity:      it.Quantity,
			SubtotalLabel: a.price(it.Subtotal()),
			AtLimit:       it.Quantity >= it.Stock,
		})
	}
	return ui.CartState{Lines: rows, TotalLabel: a.price(a.cart.Total()), Count: a.cart.Count()}
}

func (a *App) product(id int) (cart.Product, bool) {
	p, ok := a.catalog.Product(id)
	if !ok {
		return cart.Product{}, false
	}
	return toCartProduct(p), true
}

func (a *App) cartProducts() []cart.Product {
	out := make([]cart.Product, 0, len(a.catalog.Products))
	for _, p := range a.catalog.Products {
		out = append(out, toCartProduct(p))
	}
	return out
}

func (a *App) price(amount int64) string {
	return a.catalog.Currency + humanize.Comma(amount)
}

func toCartProduct(p catalog.Product) cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Description: p.DescriptionMD}
}

func slideRows(cat catalog.Catalog) []ui.Slide {
	out := make([]ui.Slide, 0, len(cat.Slides))
	for _, s := range cat.Slides {
		out = append(out, ui.Slide{ID: s.ID, Title: s.Title, Caption: s.Caption, ImageURI: s.ImageURI, ProductID: s.ProductID})
	}
	return out
}

// carouselConfig turns the catalog's tuning block into carousel settings.
// A non-zero autoplay from the command line or environment wins.
func carouselConfig(spec catalog.CarouselSpec, autoplay time.Duration) carousel.Config {
	cfg := carousel.DefaultConfig()
	if spec.ColumnsPerScreen > 0 {
		cfg.ColumnsPerScreen = spec.ColumnsPerScreen
	}
	if spec.AutoplayMS > 0 {
		cfg.AutoplayInterval = time.Duration(spec.AutoplayMS) * time.Millisecond
	}
	if spec.ResetDelayMS > 0 {
		cfg.ResetDelay = time.Duration(spec.ResetDelayMS) * time.Millisecond
	}
	if autoplay > 0 {
		cfg.AutoplayInterval = autoplay
	}
	return cfg
}

// applySavedSettings fills config values the user left empty from the
// settings saved by a previous run.
func applySavedSettings(ctx context.Context, cfg *Config, store Store) error {
	saved, err := store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	if cfg.UI.StyleVariant == "" {
		cfg.UI.StyleVariant = saved[settingStyle]
		switch cfg.UI.StyleVariant {
		case "midnight", "daylight", "receipt":
		default:
			cfg.UI.StyleVariant = ""
		}
	}
	return nil
}

func stockNotice(err *cart.StockError) string {
	return fmt.Sprintf("Insufficient stock: only %d %s available.", err.Stock, err.Name)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
