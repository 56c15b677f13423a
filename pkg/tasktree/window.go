package tasktree

import (
	"fmt"
	"math"
)

// DefaultRowHeight is the row height in unscaled pixels.
const DefaultRowHeight = 24.0

// Window is the range of rows intersecting the viewport.
// Rows [First, Last) are visible; Anchor is the nearest top-level row at or
// before First, where a partially scrolled subtree starts.
type Window struct {
	First  int
	Last   int
	Anchor int
}

// Len returns the number of visible rows.
func (w Window) Len() int {
	return w.Last - w.First
}

// computeWindow maps a scroll offset and viewport height to row indices.
func computeWindow(rows []Row, scrollOffset, viewportHeight, rowHeight float64) (Window, error) {
	if rowHeight <= 0 || math.IsNaN(rowHeight) || math.IsInf(rowHeight, 1) {
		return Window{}, fmt.Errorf("invalid row height %v", rowHeight)
	}
	if !(scrollOffset > 0) {
		scrollOffset = 0
	}
	if !(viewportHeight > 0) {
		viewportHeight = 0
	}

	total := len(rows)
	first := rowIndex(math.Floor(scrollOffset/rowHeight), total)
	last := rowIndex(math.Ceil((scrollOffset+viewportHeight)/rowHeight), total)
	if last < first {
		last = first
	}

	// Linear backward scan; bounded by nesting depth in practice, by the row
	// count in the worst case.
	anchor := first
	if anchor == total && anchor > 0 {
		anchor--
	}
	for anchor > 0 && rows[anchor].Depth > 0 {
		anchor--
	}
	if total == 0 {
		anchor = 0
	}

	return Window{First: first, Last: last, Anchor: anchor}, nil
}

// rowIndex clamps a row position to [0, total] before converting it, so
// huge or infinite positions never wrap.
func rowIndex(pos float64, total int) int {
	if pos >= float64(total) {
		return total
	}
	return clampRow(int(pos), total)
}

func clampRow(i, total int) int {
	if i < 0 {
		return 0
	}
	if i > total {
		return total
	}
	return i
}
