package nav

// ChromeRows are the terminal rows not available to the flat list: the
// title bar, the status line and the key help line.
const ChromeRows = 3

// VisibleHeight is the number of list rows that fit in a terminal of rows
// lines. It is never less than one.
func VisibleHeight(rows int) int {
	h := rows - ChromeRows
	if h < 1 {
		return 1
	}
	return h
}

// Scroll returns the viewport offset that keeps selected inside
// [offset, offset+height). The offset is also pulled back when the list
// shrinks, so a collapse near the bottom does not leave blank rows.
func Scroll(selected, offset, height, total int) int {
	if height < 1 {
		height = 1
	}
	if selected < offset {
		offset = selected
	} else if selected >= offset+height {
		offset = selected - height + 1
	}
	if total > 0 {
		if maxOffset := total - height; offset > maxOffset {
			offset = maxOffset
		}
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// VisibleRange is the [start, end) slice of Items currently on screen.
func (s AppState) VisibleRange() (int, int) {
	start := clamp(s.ViewportOffset, 0, len(s.Items))
	end := start + s.VisibleHeight()
	if end > len(s.Items) {
		end = len(s.Items)
	}
	return start, end
}

// VisibleItems returns the rows currently on screen.
func (s AppState) VisibleItems() []FlatItem {
	start, end := s.VisibleRange()
	return s.Items[start:end]
}
