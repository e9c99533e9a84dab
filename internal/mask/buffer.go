// Package mask implements the mutable overlay mask the drawing surface
// accumulates brush and eraser strokes into. The classification engine never
// sees individual strokes, only the final mask.
package mask

import (
	"fmt"
	"image"
	"image/color"

	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

// Buffer owns a W×H overlay mask aligned 1:1 with a base micrograph. A new
// buffer is fully transparent (nothing marked). Strokes are applied in order
// with integer disc stamping, so the same stroke list always produces the
// same mask.
type Buffer struct {
	img        *image.NRGBA
	paintColor color.NRGBA
	minRadius  int
	maxRadius  int
}

// NewBuffer creates an empty mask buffer for a base image of the given size.
func NewBuffer(width, height int, paintColor color.NRGBA, minRadius, maxRadius int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", width, height)
	}
	if minRadius < 1 || maxRadius < minRadius {
		return nil, fmt.Errorf("invalid brush radius bounds (min=%d, max=%d)", minRadius, maxRadius)
	}
	return &Buffer{
		img:        image.NewNRGBA(image.Rect(0, 0, width, height)),
		paintColor: paintColor,
		minRadius:  minRadius,
		maxRadius:  maxRadius,
	}, nil
}

// Image returns the accumulated mask. The caller must treat it as read-only
// while the buffer is still receiving strokes.
func (b *Buffer) Image() *image.NRGBA {
	return b.img
}

// Apply applies one stroke. Brush strokes stamp filled discs of the paint
// colour along each polyline segment; eraser strokes clear the same discs
// back to fully transparent, restoring the pre-paint state exactly.
func (b *Buffer) Apply(stroke models.Stroke) error {
	switch stroke.Tool {
	case models.ToolBrush, models.ToolEraser:
	default:
		return fmt.Errorf("unknown tool %q", stroke.Tool)
	}
	if len(stroke.Points) == 0 {
		return fmt.Errorf("stroke has no points")
	}

	radius := stroke.Radius
	if radius < b.minRadius {
		radius = b.minRadius
	}
	if radius > b.maxRadius {
		radius = b.maxRadius
	}

	erase := stroke.Tool == models.ToolEraser
	prev := stroke.Points[0]
	b.stampDisc(prev.X, prev.Y, radius, erase)
	for _, pt := range stroke.Points[1:] {
		b.stampSegment(prev, pt, radius, erase)
		prev = pt
	}
	return nil
}

// Clear resets the whole mask to unmarked.
func (b *Buffer) Clear() {
	for i := range b.img.Pix {
		b.img.Pix[i] = 0
	}
}

// stampSegment stamps discs along the line from p0 to p1 at unit steps,
// matching the round-cap polyline the drawing surface draws.
func (b *Buffer) stampSegment(p0, p1 models.Point, radius int, erase bool) {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		b.stampDisc(p1.X, p1.Y, radius, erase)
		return
	}
	for i := 1; i <= steps; i++ {
		x := p0.X + dx*i/steps
		y := p0.Y + dy*i/steps
		b.stampDisc(x, y, radius, erase)
	}
}

// stampDisc paints or clears the filled integer disc x²+y² <= r² at (cx,cy).
func (b *Buffer) stampDisc(cx, cy, radius int, erase bool) {
	bounds := b.img.Bounds()
	rSq := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > rSq {
				continue
			}
			x := cx + dx
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			i := b.img.PixOffset(x, y)
			if erase {
				b.img.Pix[i+0] = 0
				b.img.Pix[i+1] = 0
				b.img.Pix[i+2] = 0
				b.img.Pix[i+3] = 0
			} else {
				b.img.Pix[i+0] = b.paintColor.R
				b.img.Pix[i+1] = b.paintColor.G
				b.img.Pix[i+2] = b.paintColor.B
				b.img.Pix[i+3] = b.paintColor.A
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
