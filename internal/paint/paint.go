package paint

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/ravel/internal/proc"
	"github.com/dshills/ravel/internal/ui"
	"github.com/dshills/ravel/internal/vterm"
)

// Painter draws one frame from the engine's current state onto a
// Backend. It holds no state of its own beyond the backend and a
// true-color capability flag: it reads focus, selection and the selected
// proc's grid directly on each frame, and keeps no incremental diff —
// the scheduler already guarantees at most one Render per tick.
type Painter struct {
	backend   *Backend
	trueColor bool
}

// NewPainter wraps backend. True-color output starts disabled; it is
// turned on only through SetTrueColor.
func NewPainter(backend *Backend) *Painter {
	return &Painter{backend: backend}
}

// SetTrueColor sets whether true-color output is used; cmd/ravel calls
// this once after Backend.Init, when the tcell screen is live and can
// report screen.Colors() accurately.
func (p *Painter) SetTrueColor(v bool) { p.trueColor = v }

// Render paints one frame: the process list, the selected proc's output,
// and the help row, then flushes it to the terminal.
func (p *Painter) Render(procs []*proc.Proc, state *ui.State) {
	rows, cols := p.backend.Size()
	layout := Compute(rows, cols)

	p.backend.Clear()
	p.renderList(layout.List, procs, state)
	p.renderMain(layout.Main, procs, state)
	p.renderHelp(layout.Help, procs, state)
	p.backend.Show()
}

func (p *Painter) renderList(area Rect, procs []*proc.Proc, state *ui.State) {
	selected := state.Selected()
	for i := 0; i < area.H && i < len(procs); i++ {
		pr := procs[i]
		style := tcell.StyleDefault
		badge := statusBadge(pr.State())
		if i == selected {
			style = style.Reverse(true)
		}
		if pr.State() == proc.StateStopped {
			style = style.Foreground(tcell.ColorGray)
		}

		label := fmt.Sprintf("%s %s", badge, pr.Name)
		label = truncate(label, area.W)
		p.drawText(area.X, area.Y+i, area.W, label, style)
	}
	for i := len(procs); i < area.H; i++ {
		p.drawText(area.X, area.Y+i, area.W, "", tcell.StyleDefault)
	}
}

func statusBadge(s proc.State) string {
	switch s {
	case proc.StateRunning:
		return "●"
	case proc.StateStopping:
		return "◐"
	default:
		return "○"
	}
}

func (p *Painter) renderMain(area Rect, procs []*proc.Proc, state *ui.State) {
	idx := state.Selected()
	if idx < 0 || idx >= len(procs) {
		return
	}
	current := procs[idx]

	if vk := current.VtermKind(); vk != nil {
		p.renderVterm(area, vk)
		return
	}
	if sk := current.SimpleKind(); sk != nil {
		p.renderSimple(area, sk)
		return
	}

	msg := fmt.Sprintf("%s (exit %d)", current.State(), current.ExitCode())
	p.drawText(area.X, area.Y, area.W, msg, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func (p *Painter) renderVterm(area Rect, vk *proc.VtermKind) {
	for row := 0; row < area.H; row++ {
		for col := 0; col < area.W; col++ {
			cell := vk.ViewCell(col, row, area.H)
			if cell.Width == 0 {
				continue // continuation cell of a wide rune already drawn
			}
			style := styleFor(cell.Foreground, cell.Background, cell.Attributes, p.trueColor)
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			p.backend.SetCell(area.X+col, area.Y+row, r, style)
		}
	}

	screen := vk.Screen()
	cx, cy := screen.CursorPos()
	if vk.ViewOffset() == 0 && screen.CursorVisible() && cx < area.W && cy < area.H {
		p.backend.ShowCursorAt(area.X+cx, area.Y+cy)
	} else {
		p.backend.HideCursor()
	}
}

func (p *Painter) renderSimple(area Rect, sk *proc.SimpleKind) {
	lines, partial := sk.Lines(area.H)
	if partial != "" {
		lines = append(lines, partial)
	}
	start := 0
	if len(lines) > area.H {
		start = len(lines) - area.H
	}
	visible := lines[start:]

	for row := 0; row < area.H; row++ {
		text := ""
		if row < len(visible) {
			text = visible[row]
		}
		p.drawText(area.X, area.Y+row, area.W, truncate(text, area.W), tcell.StyleDefault)
	}
	p.backend.HideCursor()
}

// renderHelp draws the keybinding hints plus a status segment for the
// selected proc: the title its child reported via OSC 0/2 (icon name as
// a fallback) and the working directory tracked via OSC 7.
func (p *Painter) renderHelp(area Rect, procs []*proc.Proc, state *ui.State) {
	text := "q quit  j/k select  s start  x kill  r restart  C-a focus"
	if state.Focus() == ui.FocusTerm {
		text = "C-a procs  (keys forwarded to process)"
	}

	idx := state.Selected()
	if idx >= 0 && idx < len(procs) {
		if vk := procs[idx].VtermKind(); vk != nil {
			text = composeHelp(text, reportedTitle(vk.Screen()), procs[idx].WorkingDirectory(), area.W)
		}
	}

	style := tcell.StyleDefault.Dim(true)
	p.drawText(area.X, area.Y, area.W, truncate(text, area.W), style)
}

// reportedTitle prefers the OSC 2 window title, falling back to the OSC 1
// icon name, which some programs set instead.
func reportedTitle(s *vterm.Screen) string {
	if t := s.Title(); t != "" {
		return t
	}
	return s.IconName()
}

// composeHelp appends the proc's title and cwd to the help text,
// right-aligned into whatever width remains; when the row is too narrow
// to right-align, the status is simply appended and truncation applies.
func composeHelp(base, title, cwd string, width int) string {
	status := title
	if cwd != "" {
		if status != "" {
			status += "  "
		}
		status += cwd
	}
	if status == "" {
		return base
	}
	gap := width - displayWidth(base) - displayWidth(status)
	if gap < 2 {
		return base + "  " + status
	}
	return base + strings.Repeat(" ", gap) + status
}

// drawText writes s left-aligned in a row, clearing the remainder of the
// row to width with blanks in the same style.
func (p *Painter) drawText(x, y, width int, s string, style tcell.Style) {
	col := 0
	for _, r := range s {
		if col >= width {
			break
		}
		w := 1
		if rw := runewidth.RuneWidth(r); rw > 0 {
			w = rw
		}
		p.backend.SetCell(x+col, y, r, style)
		col += w
	}
	for ; col < width; col++ {
		p.backend.SetCell(x+col, y, ' ', style)
	}
}
