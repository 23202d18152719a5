package ui

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		return r, r.quit()
	}
	if r.noticeText != "" {
		switch msg.String() {
		case "esc", "enter", "space":
			r.dismissNotice()
		}
		return r, nil
	}
	if r.demoName != "" {
		r.stopDemo()
	}

	switch {
	case key.Matches(msg, r.keymap.Prev):
		r.car.Step(-1)
	case key.Matches(msg, r.keymap.Next):
		r.car.Step(1)
	case key.Matches(msg, r.keymap.Up):
		r.moveSelection(-1)
	case key.Matches(msg, r.keymap.Down):
		r.moveSelection(1)
	case key.Matches(msg, r.keymap.Focus):
		if r.focus == FocusProducts {
			r.focus = FocusCart
		} else {
			r.focus = FocusProducts
		}
	case key.Matches(msg, r.keymap.Add), key.Matches(msg, r.keymap.Inc):
		r.addSelected()
	case key.Matches(msg, r.keymap.Dec):
		if id, ok := r.selectedInCart(); ok {
			r.dispatchController(func(c Controller) { c.OnDecrease(id) })
		}
	case key.Matches(msg, r.keymap.Remove):
		if id, ok := r.selectedInCart(); ok {
			r.dispatchController(func(c Controller) { c.OnRemove(id) })
		}
	case key.Matches(msg, r.keymap.Clear):
		if r.cart.Count == 0 {
			r.statusFlash = "Cart is already empty"
			break
		}
		r.dispatchController(func(c Controller) { c.OnClear() })
	case key.Matches(msg, r.keymap.Theme):
		next := nextStyleVariant(r.styleVariant)
		r.setStyle(next)
		r.statusFlash = "Theme: " + next
		r.dispatchController(func(c Controller) { c.OnStyleChanged(next) })
	case key.Matches(msg, r.keymap.Help):
		r.help.ShowAll = !r.help.ShowAll
	}
	return r, nil
}

func (r *Root) quit() tea.Cmd {
	if r.ctrl == nil {
		return tea.Quit
	}
	r.dispatchController(func(c Controller) { c.OnQuit() })
	return nil
}

func (r *Root) dismissNotice() {
	r.noticeTitle = ""
	r.noticeText = ""
}

func (r *Root) stopDemo() {
	r.player.Stop()
	r.player = nil
	r.pendingDemo = nil
	r.statusFlash = "Demo " + r.demoName + " stopped"
	r.demoName = ""
}

func (r *Root) addSelected() {
	id, ok := r.selectedID()
	if !ok {
		return
	}
	if r.focus == FocusCart {
		r.dispatchController(func(c Controller) { c.OnIncrease(id) })
		return
	}
	r.dispatchController(func(c Controller) { c.OnAddToCart(id) })
}

// selectedInCart resolves the focused row to a product that has a cart line.
func (r *Root) selectedInCart() (int, bool) {
	if r.focus == FocusCart {
		line, ok := r.selectedCartLine()
		return line.ProductID, ok
	}
	p, ok := r.selectedProduct()
	if !ok {
		return 0, false
	}
	if p.InCart == 0 {
		r.statusFlash = p.Name + " is not in the cart"
		return 0, false
	}
	return p.ID, true
}

func (r *Root) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_click:%d,%d button:%v", m.X, m.Y, m.Button))

	if r.mouseScope == "off" || m.Button != tea.MouseLeft {
		return r, nil
	}
	if r.noticeText != "" {
		r.dismissNotice()
		return r, nil
	}
	if r.layout != LayoutTooSmall && r.geometry().inBand(m.Y) && r.car.Count() > 0 {
		r.beginDrag(m.X)
		return r, nil
	}
	if r.mouseScope == "full" {
		r.clickPanels(m.X, m.Y)
	}
	return r, nil
}

func (r *Root) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	if !r.dragging() {
		return r, nil
	}
	r.vp.follow(m.X)
	return r, nil
}

func (r *Root) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_release:%d,%d", m.X, m.Y))
	if !r.dragging() {
		return r, nil
	}
	r.vp.follow(m.X)
	r.syncSurface()
	r.endDrag(r.vp.release())
	return r, nil
}

func (r *Root) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_wheel:%d,%d button:%v", m.X, m.Y, m.Button))

	if r.mouseScope == "off" {
		return r, nil
	}
	delta := 0
	switch m.Button {
	case tea.MouseWheelUp, tea.MouseWheelLeft:
		delta = -1
	case tea.MouseWheelDown, tea.MouseWheelRight:
		delta = 1
	}
	if delta == 0 {
		return r, nil
	}
	if r.layout != LayoutTooSmall && r.geometry().inBand(m.Y) {
		r.car.Step(delta)
		return r, nil
	}
	if r.mouseScope == "full" {
		r.moveSelection(delta)
	}
	return r, nil
}

func (r *Root) clickPanels(x, y int) {
	g := r.geometry()
	row := y - g.bodyTop - 1
	if row < 0 || row >= g.bodyHeight-2 {
		return
	}
	switch {
	case x >= g.productsX && x < g.productsX+g.productsW:
		r.focus = FocusProducts
		if row < len(r.products) {
			r.productIndex = row
		}
	case g.cartW > 0 && x >= g.cartX && x < g.cartX+g.cartW:
		r.focus = FocusCart
		if row < len(r.cart.Lines) {
			r.cartIndex = row
		}
	}
}
