package paint

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Rect is one rectangular area of the frame. The UI only ever needs the
// three fixed panes below, so layout is a direct computation rather than
// a general constraint solver.
type Rect struct {
	X, Y, W, H int
}

// Layout is the three-pane arrangement: a process list on the left, the
// selected proc's output filling the remainder, and a one-line help row
// pinned to the bottom.
type Layout struct {
	List Rect
	Main Rect
	Help Rect
}

const listPaneWidth = 24
const minListPaneWidth = 12

// Compute derives the layout from the host terminal's current size.
// Below a minimal width the list pane shrinks rather than disappearing,
// so SelectIndex remote commands remain visually checkable even in a
// narrow terminal.
func Compute(rows, cols int) Layout {
	help := Rect{X: 0, Y: rows - 1, W: cols, H: 1}
	body := rows - 1
	if body < 0 {
		body = 0
	}

	listW := listPaneWidth
	if cols-listW < minListPaneWidth {
		listW = cols / 3
		if listW < minListPaneWidth {
			listW = minListPaneWidth
		}
	}
	if listW > cols {
		listW = cols
	}
	if listW < 0 {
		listW = 0
	}

	list := Rect{X: 0, Y: 0, W: listW, H: body}
	main := Rect{X: listW, Y: 0, W: cols - listW, H: body}
	return Layout{List: list, Main: main, Help: help}
}

// displayWidth measures the number of terminal columns s occupies,
// walking grapheme clusters so combining marks and joiners inside a
// process name or help string don't inflate the column count beyond
// what the host terminal actually renders.
func displayWidth(s string) int {
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := 0
		for _, r := range g.Runes() {
			if w := runewidth.RuneWidth(r); w > cw {
				cw = w
			}
		}
		width += cw
	}
	return width
}

// truncate shortens s to fit within maxWidth display columns, appending
// an ellipsis when it had to cut, measured the same grapheme-aware way
// as displayWidth so truncation never splits a combining sequence.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if displayWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	budget := maxWidth - 1
	out := make([]rune, 0, len(s))
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		cw := 0
		for _, r := range runes {
			if w := runewidth.RuneWidth(r); w > cw {
				cw = w
			}
		}
		if width+cw > budget {
			break
		}
		width += cw
		out = append(out, runes...)
	}
	return string(out) + "…"
}
