package phase

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// RenderOverlay produces a human-viewable composite for the report: the base
// micrograph with every marked mask pixel blended towards the highlight
// colour. The highlight's alpha channel sets the blend strength. Inputs are
// borrowed read-only; the returned image is independently owned.
func RenderOverlay(base image.Image, mask *image.NRGBA, pred MarkPredicate, highlight color.NRGBA) (*image.NRGBA, error) {
	baseBounds := base.Bounds()
	w, h := baseBounds.Dx(), baseBounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, w, h)
	}
	if mask == nil {
		return nil, fmt.Errorf("%w: mask is nil, base is %dx%d", ErrDimensionMismatch, w, h)
	}
	maskBounds := mask.Bounds()
	if maskBounds.Dx() != w || maskBounds.Dy() != h {
		return nil, fmt.Errorf("%w: mask is %dx%d, base is %dx%d",
			ErrDimensionMismatch, maskBounds.Dx(), maskBounds.Dy(), w, h)
	}
	if pred == nil {
		pred = DefaultOptions().Predicate()
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), base, baseBounds.Min, draw.Src)

	blend := uint32(highlight.A)
	for y := 0; y < h; y++ {
		mi := mask.PixOffset(maskBounds.Min.X, maskBounds.Min.Y+y)
		oi := out.PixOffset(0, y)
		for x := 0; x < w; x++ {
			if pred(mask.Pix[mi], mask.Pix[mi+1], mask.Pix[mi+2], mask.Pix[mi+3]) {
				out.Pix[oi+0] = mix(out.Pix[oi+0], highlight.R, blend)
				out.Pix[oi+1] = mix(out.Pix[oi+1], highlight.G, blend)
				out.Pix[oi+2] = mix(out.Pix[oi+2], highlight.B, blend)
				out.Pix[oi+3] = 255
			}
			mi += 4
			oi += 4
		}
	}
	return out, nil
}

// mix linearly interpolates from a towards b by t/255.
func mix(a, b uint8, t uint32) uint8 {
	return uint8((uint32(a)*(255-t) + uint32(b)*t) / 255)
}
