package ui

type Controller interface {
	OnAddToCart(productID int)
	OnIncrease(productID int)
	OnDecrease(productID int)
	OnRemove(productID int)
	OnClear()
	OnSlideChanged(page, count int, slideIDs []string)
	OnStyleChanged(variant string)
	OnQuit()
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetProducts(rows []ProductRow)
	SetSlides(slides []Slide, groupSize int)
	SetCart(state CartState)
	SetSaving(saving bool)
	ShowNotice(title, text string)
	FlashStatus(msg string)
	SetStyleVariant(variant string)
	PlayDemo(name string) bool
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

type Focus int

const (
	FocusProducts Focus = iota
	FocusCart
)

type ProductRow struct {
	ID            int
	Name          string
	PriceLabel    string
	Stock         int
	InCart        int
	DescriptionMD string
}

// Remaining is how many more units can go into the cart.
func (p ProductRow) Remaining() int {
	return max(0, p.Stock-p.InCart)
}

type Slide struct {
	ID        string
	Title     string
	Caption   string
	ImageURI  string
	ProductID int
}

type CartState struct {
	Lines      []CartLineRow
	TotalLabel string
	Count      int
}

type CartLineRow struct {
	ProductID     int
	Name          string
	Quantity      int
	SubtotalLabel string
	AtLimit       bool
}
