package phase

import "image/color"

// Options configures how mask samples are classified as marked.
type Options struct {
	// PaintColor is the brush colour the drawing surface uses for pearlite.
	PaintColor color.NRGBA

	// AlphaThreshold is the minimum alpha (exclusive) for a sample to count.
	// Brush edges are anti-aliased, so partially covered pixels fall below
	// this threshold and are excluded deterministically.
	AlphaThreshold uint8

	// ColorTolerance is the maximum Euclidean RGB distance from PaintColor.
	ColorTolerance float64
}

// DefaultOptions returns the classification defaults matching the standard
// drawing surface: a 70%-opacity red brush.
func DefaultOptions() Options {
	return Options{
		PaintColor:     color.NRGBA{R: 220, G: 50, B: 50, A: 255},
		AlphaThreshold: 50,
		ColorTolerance: 80,
	}
}

// WithPaintColor returns options with a custom brush colour
func (o Options) WithPaintColor(c color.NRGBA) Options {
	o.PaintColor = c
	return o
}

// WithAlphaThreshold returns options with a custom minimum alpha
func (o Options) WithAlphaThreshold(a uint8) Options {
	o.AlphaThreshold = a
	return o
}

// WithColorTolerance returns options with a custom colour distance bound
func (o Options) WithColorTolerance(t float64) Options {
	o.ColorTolerance = t
	return o
}

// Predicate builds the mark predicate for these options: alpha above the
// threshold AND colour within tolerance of the paint colour.
func (o Options) Predicate() MarkPredicate {
	tolSq := o.ColorTolerance * o.ColorTolerance
	pr, pg, pb := float64(o.PaintColor.R), float64(o.PaintColor.G), float64(o.PaintColor.B)
	threshold := o.AlphaThreshold
	return func(r, g, b, a uint8) bool {
		if a <= threshold {
			return false
		}
		dr := float64(r) - pr
		dg := float64(g) - pg
		db := float64(b) - pb
		return dr*dr+dg*dg+db*db <= tolSq
	}
}
