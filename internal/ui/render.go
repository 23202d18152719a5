package ui

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"shopswipe/internal/carousel"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

type screenGeometry struct {
	bandTop    int
	bandHeight int
	bodyTop    int
	bodyHeight int
	productsX  int
	productsW  int
	detailX    int
	detailW    int
	cartX      int
	cartW      int
}

func (r *Root) geometry() screenGeometry {
	w, h := r.cols, r.rows
	g := screenGeometry{bandTop: 1, bandHeight: bandHeight(h)}
	g.bodyTop = g.bandTop + g.bandHeight
	g.bodyHeight = max(3, h-g.bodyTop-2)
	if r.layout == LayoutWide {
		g.productsW = w * 35 / 100
		g.cartW = w * 30 / 100
		g.detailX = g.productsW
		g.detailW = w - g.productsW - g.cartW
		g.cartX = g.detailX + g.detailW
		return g
	}
	g.productsW = w / 2
	g.cartX = g.productsW
	g.cartW = w - g.productsW
	return g
}

// inBand reports whether row y falls on the carousel's content rows.
func (g screenGeometry) inBand(y int) bool {
	return y > g.bandTop && y < g.bandTop+g.bandHeight-1
}

func (r *Root) renderScreen() string {
	w, h := r.cols, r.rows
	if DetermineLayoutMode(w, h) == LayoutTooSmall {
		msg := []string{
			"Window too small",
			fmt.Sprintf("Current: %dx%d", w, h),
			"Minimum: 60x20",
		}
		panel := r.drawPanel("Resize", msg, min(40, max(4, w)), min(7, max(3, h)))
		return lipgloss.Place(max(1, w), max(1, h), lipgloss.Center, lipgloss.Center, panel)
	}

	g := r.geometry()
	parts := []string{r.headerText(w)}
	parts = append(parts, r.renderBand(w, g.bandHeight)...)

	products := r.drawPanel("Products", r.productLines(g.productsW-2), g.productsW, g.bodyHeight)
	cart := r.drawPanel("Cart", r.cartLines(g.cartW-2), g.cartW, g.bodyHeight)
	var body string
	if g.detailW > 0 {
		detail := r.drawPanel("Details", r.detailLines(g.detailW-2), g.detailW, g.bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top, products, detail, cart)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, products, cart)
	}
	parts = append(parts, body)
	parts = append(parts, trimForWidth(r.help.View(r.keymap), w))
	parts = append(parts, r.theme.Status.Width(w).Render(trimForWidth(r.statusText(), max(1, w-2))))
	return strings.Join(parts, "\n")
}

func (r *Root) headerText(w int) string {
	parts := []string{"ShopSwipe"}
	if r.cart.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d in cart", r.cart.Count), r.cart.TotalLabel)
	}
	if r.saving {
		parts = append(parts, r.saveSpin.View()+" saving")
	}
	if r.demoName != "" {
		parts = append(parts, "demo: "+r.demoName)
	}
	return r.theme.Header.Width(max(1, w)).Render(strings.Join(parts, " · "))
}

func (r *Root) statusText() string {
	if r.statusFlash != "" {
		return r.statusFlash
	}
	if r.focus == FocusCart {
		return "Cart: +/- quantity · x remove · C clear · tab back to products"
	}
	return "Drag or ←/→ to browse · enter adds the selected product · tab for the cart"
}

func (r *Root) renderBand(w, h int) []string {
	n := r.car.Count()
	badge := ""
	if n > 0 {
		badge = fmt.Sprintf("%d/%d", r.car.DisplayIndex(), n)
	}
	lines := []string{r.theme.PanelBorder.Render(rule("Featured", badge, w, r.ascii))}
	inner := max(1, h-2)
	if n == 0 || r.car.ItemWidth() <= 0 {
		for i := 0; i < inner; i++ {
			text := ""
			if i == inner/2 {
				text = "No featured items"
			}
			lines = append(lines, r.theme.Muted.Render(centerText(text, w)))
		}
	} else {
		for _, row := range r.bandRows(w, inner) {
			lines = append(lines, r.theme.Card.Render(row))
		}
	}
	return append(lines, r.pageDots(w))
}

// bandRows paints the visible window of the loop buffer. Screen column x
// shows content position offset+x.
func (r *Root) bandRows(w, h int) []string {
	buf := r.car.Buffer()
	iw := r.car.ItemWidth()
	cardW := max(1, int(math.Ceil(iw)))
	cards := map[int][][]rune{}
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	for x := 0; x < w; x++ {
		p := r.vp.offset + float64(x)
		col := int(math.Floor(p / iw))
		local := min(max(int(math.Floor(p-float64(col)*iw)), 0), cardW-1)
		slot := wrapColumn(col, len(buf))
		if slot < 0 {
			continue
		}
		card, ok := cards[slot]
		if !ok {
			card = cardLines(buf[slot], cardW, h, r.ascii)
			cards[slot] = card
		}
		for y := 0; y < h; y++ {
			grid[y][x] = card[y][local]
		}
	}
	out := make([]string, h)
	for y := range grid {
		out[y] = string(grid[y])
	}
	return out
}

// cardLines lays a column's slides out top to bottom, each in its own box.
func cardLines(col carousel.Column[Slide], w, h int, ascii bool) [][]rune {
	out := make([][]rune, 0, h)
	k := max(1, len(col.Items))
	per := h / k
	for i := 0; i < k; i++ {
		bh := per
		if i == k-1 {
			bh = h - per*(k-1)
		}
		var s Slide
		if i < len(col.Items) {
			s = col.Items[i]
		}
		out = append(out, slideBlock(s, w, bh, ascii)...)
	}
	return out
}

func slideBlock(s Slide, w, h int, ascii bool) [][]rune {
	rows := make([][]rune, h)
	blank := func() []rune { return []rune(strings.Repeat(" ", w)) }
	for i := range rows {
		rows[i] = blank()
	}
	if h <= 0 {
		return rows
	}
	if h < 3 || w < 6 {
		rows[0] = []rune(padRune(" "+s.Title, w))
		return rows
	}
	tl, tr, bl, br, hz, vt := "╭", "╮", "╰", "╯", "─", "│"
	if ascii {
		tl, tr, bl, br, hz, vt = "+", "+", "+", "+", "-", "|"
	}
	boxW := w - 2
	innerW := boxW - 2
	rows[0] = []rune(" " + tl + strings.Repeat(hz, innerW) + tr + " ")
	rows[h-1] = []rune(" " + bl + strings.Repeat(hz, innerW) + br + " ")
	content := []string{s.Title, s.Caption}
	if host := imageHost(s.ImageURI); host != "" {
		content = append(content, "[img] "+host)
	}
	for i := 1; i < h-1; i++ {
		text := ""
		if i-1 < len(content) {
			text = content[i-1]
		}
		rows[i] = []rune(" " + vt + padRune(" "+text, innerW) + vt + " ")
	}
	return rows
}

func imageHost(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	return u.Host
}

func (r *Root) pageDots(w int) string {
	n := r.car.Count()
	if n == 0 {
		return strings.Repeat(" ", max(0, w))
	}
	current := r.car.DisplayIndex()
	on, off := "●", "○"
	if r.ascii {
		on, off = "*", "."
	}
	if n*2-1 > w {
		return r.theme.Muted.Render(centerText(fmt.Sprintf("page %d of %d", current, n), w))
	}
	dots := make([]string, n)
	for i := 1; i <= n; i++ {
		if i == current {
			dots[i-1] = r.theme.DotActive.Render(on)
		} else {
			dots[i-1] = r.theme.Dot.Render(off)
		}
	}
	pad := (w - (n*2 - 1)) / 2
	return strings.Repeat(" ", pad) + strings.Join(dots, " ")
}

func (r *Root) productLines(width int) []string {
	if len(r.products) == 0 {
		return []string{"No products loaded."}
	}
	lines := make([]string, len(r.products))
	for i, p := range r.products {
		prefix := "  "
		selected := i == r.productIndex
		if selected {
			prefix = "> "
		}
		left := prefix + p.Name
		right := fmt.Sprintf("%s  %d left", p.PriceLabel, p.Remaining())
		line := spread(left, right, width)
		if selected && r.focus == FocusProducts {
			line = r.theme.Selected.Render(line)
		}
		lines[i] = line
	}
	return lines
}

func (r *Root) detailLines(width int) []string {
	p, ok := r.selectedProduct()
	if !ok {
		return nil
	}
	lines := []string{
		r.theme.Accent.Render(p.Name) + "  " + r.theme.Price.Render(p.PriceLabel),
		fmt.Sprintf("In cart %d of %d", p.InCart, p.Stock),
		r.stockBar(p, max(8, width-2)),
		"",
	}
	if md := strings.TrimSpace(p.DescriptionMD); md != "" {
		lines = append(lines, strings.Split(r.renderMarkdown(p.ID, md, width), "\n")...)
	}
	return lines
}

func (r *Root) stockBar(p ProductRow, width int) string {
	m := r.stock
	m.SetWidth(width)
	if p.Stock <= 0 {
		return m.ViewAs(1)
	}
	return m.ViewAs(float64(p.InCart) / float64(p.Stock))
}

func (r *Root) renderMarkdown(id int, md string, width int) string {
	if r.markdown == nil || width != r.mdWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.theme.MarkdownStyle),
			glamour.WithWordWrap(max(10, width-2)),
		)
		if err != nil {
			r.logger.Warn("markdown renderer", "err", err)
			return md
		}
		r.markdown = renderer
		r.mdWidth = width
		r.mdCache = map[int]string{}
	}
	if out, ok := r.mdCache[id]; ok {
		return out
	}
	out, err := r.markdown.Render(md)
	if err != nil {
		out = md
	}
	out = strings.Trim(out, "\n")
	r.mdCache[id] = out
	return out
}

func (r *Root) cartLines(width int) []string {
	if len(r.cart.Lines) == 0 {
		return []string{"Cart is empty."}
	}
	lines := make([]string, 0, len(r.cart.Lines)+2)
	for i, line := range r.cart.Lines {
		prefix := "  "
		selected := i == r.cartIndex
		if selected {
			prefix = "> "
		}
		left := fmt.Sprintf("%s%d × %s", prefix, line.Quantity, line.Name)
		if r.ascii {
			left = fmt.Sprintf("%s%d x %s", prefix, line.Quantity, line.Name)
		}
		if line.AtLimit {
			left += " (max)"
		}
		text := spread(left, line.SubtotalLabel, width)
		if selected && r.focus == FocusCart {
			text = r.theme.Selected.Render(text)
		}
		lines = append(lines, text)
	}
	lines = append(lines, "", r.theme.Price.Render(spread("  Total", r.cart.TotalLabel, width)))
	return lines
}

func (r *Root) renderNotice() string {
	width := min(56, max(20, r.cols-8))
	title := firstNonEmptyStr(r.noticeTitle, "Notice")
	body := lipgloss.NewStyle().Width(width - 6).Render(r.noticeText)
	return r.theme.Overlay.Render(r.theme.OverlayTitle.Render(title) + "\n\n" + body + "\n\n" + r.theme.Muted.Render("enter / click to dismiss"))
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h, v, tl, tr, bl, br := "─", "│", "┌", "┐", "└", "┘"
	if r.ascii {
		h, v, tl, tr, bl, br = "-", "|", "+", "+", "+", "+"
	}
	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		label := trimForWidth(" "+title+" ", innerW-1)
		top = tl + h + label + strings.Repeat(h, max(0, innerW-1-ansi.StringWidth(label))) + tr
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(fitWidth(line, innerW))+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

// rule draws a band edge with a title on the left and a badge on the right.
func rule(title, badge string, w int, ascii bool) string {
	h := "─"
	if ascii {
		h = "-"
	}
	left := h + " " + title + " "
	right := ""
	if badge != "" {
		right = " " + badge + " " + h
	}
	fill := w - ansi.StringWidth(left) - ansi.StringWidth(right)
	if fill < 0 {
		return trimForWidth(left+right, w)
	}
	return left + strings.Repeat(h, fill) + right
}

// fitWidth truncates or pads s to exactly width cells, keeping any styling.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func spread(left, right string, width int) string {
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return fitWidth(left+" "+right, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func centerText(s string, width int) string {
	sw := ansi.StringWidth(s)
	if sw >= width {
		return fitWidth(s, width)
	}
	left := (width - sw) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-sw-left)
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

// composeOverlay centres overlay on top of base. Styling on base is dropped.
func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	baseLines := strings.Split(ansi.Strip(base), "\n")
	for len(baseLines) < rows {
		baseLines = append(baseLines, "")
	}
	baseLines = baseLines[:rows]
	for i := range baseLines {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	ow := 1
	for _, line := range overlayLines {
		ow = max(ow, len([]rune(line)))
	}
	ow = min(ow, cols)
	oh := min(len(overlayLines), rows)
	startRow := (rows - oh) / 2
	startCol := max(0, (cols-ow)/2)

	for i := 0; i < oh; i++ {
		dst := []rune(baseLines[startRow+i])
		src := []rune(padRune(overlayLines[i], ow))
		copy(dst[startCol:], src)
		baseLines[startRow+i] = string(dst)
	}
	return strings.Join(baseLines, "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	flat := strings.ReplaceAll(s, "\n", " ")
	if ansi.StringWidth(flat) <= width {
		return flat
	}
	return ansi.Truncate(flat, width, "…")
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}
