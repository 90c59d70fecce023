package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// cellPair is the colour of the upper and lower half of one terminal cell.
type cellPair struct {
	top, bottom color.RGBA
}

// downscale reduces the composite to two pixels per terminal cell
// vertically and one horizontally.
func downscale(src *image.RGBA, cols, rows int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ink darkens anything that is not background so one-pixel strokes survive
// the reduction.
func ink(c color.RGBA) color.RGBA {
	boost := func(v uint8) uint8 {
		d := (255 - float64(v)) * inkGain
		if d > 255 {
			d = 255
		}
		return uint8(255 - d)
	}
	return color.RGBA{R: boost(c.R), G: boost(c.G), B: boost(c.B), A: 255}
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// renderCanvas draws the composite with half blocks, grouping runs of equal
// cells into one styled string. The cursor cell is drawn on top when cursor
// is true.
func renderCanvas(src *image.RGBA, cols, rows, cursorX, cursorY int, cursor bool) []string {
	small := downscale(src, cols, rows)
	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		var run cellPair
		n := 0
		flush := func() {
			if n == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(hexColor(run.top)).Background(hexColor(run.bottom))
			b.WriteString(style.Render(strings.Repeat(upperHalfBlock, n)))
			n = 0
		}
		for col := 0; col < cols; col++ {
			if cursor && col == cursorX && row == cursorY {
				flush()
				b.WriteString(cursorStyle.Render(cursorGlyph))
				continue
			}
			pair := cellPair{
				top:    ink(small.RGBAAt(col, row*2)),
				bottom: ink(small.RGBAAt(col, row*2+1)),
			}
			if n > 0 && pair != run {
				flush()
			}
			run = pair
			n++
		}
		flush()
		lines[row] = b.String()
	}
	return lines
}
