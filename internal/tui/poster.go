package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// halfBlock draws two vertical pixels per cell: foreground on top, background below
const halfBlock = "▀"

// maxPosterRenders bounds the rendered-string cache
const maxPosterRenders = 16

// posterRenderer turns images into half-block cell art. Rendering every cell
// through lipgloss is slow, so output is cached per key and size.
type posterRenderer struct {
	cache map[string]string
}

func newPosterRenderer() *posterRenderer {
	return &posterRenderer{cache: make(map[string]string)}
}

// Render draws img into cols x rows cells. key identifies the image; an
// empty key disables caching.
func (p *posterRenderer) Render(key string, img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	cacheKey := ""
	if key != "" {
		cacheKey = fmt.Sprintf("%s@%dx%d", key, cols, rows)
		if out, ok := p.cache[cacheKey]; ok {
			return out
		}
	}

	out := renderHalfBlocks(img, cols, rows)

	if cacheKey != "" {
		if len(p.cache) >= maxPosterRenders {
			clear(p.cache)
		}
		p.cache[cacheKey] = out
	}
	return out
}

// renderHalfBlocks samples img (nearest neighbour) onto a cols x 2*rows grid
func renderHalfBlocks(img image.Image, cols, rows int) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	pixelRows := rows * 2

	sample := func(x, y int) string {
		sx := b.Min.X + x*b.Dx()/cols
		sy := b.Min.Y + y*b.Dy()/pixelRows
		return hexColor(img.At(sx, sy))
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top := sample(col, row*2)
			bottom := sample(col, row*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}

// posterSize picks a cell size for a 2:3 poster that fits in width x height
func posterSize(width, height int) (cols, rows int) {
	cols = min(24, width/3)
	rows = cols * 3 / 4
	if rows > height {
		rows = height
		cols = rows * 4 / 3
	}
	return max(cols, 0), max(rows, 0)
}
