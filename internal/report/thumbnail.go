package report

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// FitThumbnail scales img down to fit within maxWidth×maxHeight, preserving
// aspect ratio. Images already inside the box are returned rescaled 1:1 into
// a fresh NRGBA so the caller always owns the result.
func FitThumbnail(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := 1.0
	if sw := float64(maxWidth) / float64(w); sw < scale {
		scale = sw
	}
	if sh := float64(maxHeight) / float64(h); sh < scale {
		scale = sh
	}

	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	out := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Src, nil)
	return out
}
