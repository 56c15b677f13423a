package ui

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tasktable/pkg/tasktree"
)

// ExpandAll expands every row that has visible children, top to bottom, so
// the whole tree is flattened.
func ExpandAll(tree *tasktree.Model) error {
	for i := 0; i < tree.RowCount(); i++ {
		row, err := tree.RowAt(i)
		if err != nil {
			return err
		}
		if row.Expanded || row.VisibleChildren == 0 {
			continue
		}
		if err := tree.ToggleExpanded(i); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the current rows as a plain indented table without styling.
// Lines are cut to width when width is positive.
func Dump(w io.Writer, tree *tasktree.Model, scale float64, width int) error {
	if scale <= 0 {
		scale = 1
	}
	cols := tree.ColumnLayout(scale)
	bw := bufio.NewWriter(w)

	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = fit(c.Title, cellWidth(c))
	}
	writeLine(bw, strings.Join(cells, " "), width)

	for _, row := range tree.Rows() {
		for i, c := range cols {
			text := tree.CellText(row, i)
			if i == tasktree.ColumnTitle {
				text = strings.Repeat("  ", row.Depth) + expandIndicator(row) + text
			}
			cells[i] = fit(text, cellWidth(c))
		}
		writeLine(bw, strings.Join(cells, " "), width)
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, line string, width int) {
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "")
	}
	w.WriteString(strings.TrimRight(line, " "))
	w.WriteByte('\n')
}
