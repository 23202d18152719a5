package ui

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 60 || rows < 20 {
		return LayoutTooSmall
	}
	if cols >= 110 && rows >= 24 {
		return LayoutWide
	}
	return LayoutCompact
}

// bandHeight is the number of rows given to the carousel, border included.
func bandHeight(rows int) int {
	return min(14, max(6, rows*2/5))
}

// wrapColumn maps any column position, including ones past either end of the
// loop buffer, onto a buffer slot that shows the same content.
func wrapColumn(i, bufferLen int) int {
	if bufferLen <= 0 {
		return -1
	}
	if i >= 0 && i < bufferLen {
		return i
	}
	n := bufferLen - 2
	if n <= 0 {
		return 0
	}
	real := (i - 1) % n
	if real < 0 {
		real += n
	}
	return real + 1
}
