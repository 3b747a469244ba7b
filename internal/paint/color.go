package paint

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/ravel/internal/vterm"
)

// styleFor converts a VTerm cell's color pair and attribute bitmask to a
// tcell.Style, folding 24-bit RGB to the nearest of tcell's 256-color
// palette when the host terminal lacks true-color support.
func styleFor(fg, bg vterm.Color, attrs vterm.CellAttributes, trueColor bool) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(tcellColor(fg, trueColor)).
		Background(tcellColor(bg, trueColor))

	if attrs.Has(vterm.AttrBold) {
		style = style.Bold(true)
	}
	if attrs.Has(vterm.AttrDim) {
		style = style.Dim(true)
	}
	if attrs.Has(vterm.AttrItalic) {
		style = style.Italic(true)
	}
	if attrs.Has(vterm.AttrUnderline) {
		style = style.Underline(true)
	}
	if attrs.Has(vterm.AttrBlink) {
		style = style.Blink(true)
	}
	if attrs.Has(vterm.AttrReverse) {
		style = style.Reverse(true)
	}
	if attrs.Has(vterm.AttrStrike) {
		style = style.StrikeThrough(true)
	}
	return style
}

func tcellColor(c vterm.Color, trueColor bool) tcell.Color {
	if c.Default {
		return tcell.ColorDefault
	}
	if c.Index >= 0 && c.Index < 256 {
		return tcell.PaletteColor(c.Index)
	}
	if trueColor {
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return nearestPaletteColor(c)
}

// nearestPaletteColor quantizes an RGB color to the closest of tcell's
// 256-color palette by perceptual (CIE76 Lab) distance, for hosts that
// negotiated only indexed color.
func nearestPaletteColor(c vterm.Color) tcell.Color {
	target, _ := colorful.MakeColor(rgbColor{c.R, c.G, c.B})
	best := tcell.PaletteColor(0)
	bestDist := 1e9
	for i := 0; i < 256; i++ {
		r, g, b := tcell.PaletteColor(i).RGB()
		cand, _ := colorful.MakeColor(rgbColor{uint8(r), uint8(g), uint8(b)})
		if d := target.DistanceLab(cand); d < bestDist {
			bestDist = d
			best = tcell.PaletteColor(i)
		}
	}
	return best
}

// rgbColor adapts a byte triple to color.Color for go-colorful's
// conversion helpers.
type rgbColor struct{ r, g, b uint8 }

func (c rgbColor) RGBA() (r, g, b, a uint32) {
	return uint32(c.r) * 0x101, uint32(c.g) * 0x101, uint32(c.b) * 0x101, 0xffff
}
