package storage

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	apperrors "github.com/CliffortMC08/pearlite-analyser/internal/errors"
)

// DecodeImage decodes an uploaded micrograph. PNG, JPEG, BMP and TIFF are
// accepted; anything else is a validation error surfaced before the image
// reaches the classification engine.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", apperrors.NewValidationError("unsupported or malformed image format", err)
	}
	return img, format, nil
}

// DecodeMask decodes an uploaded overlay mask and converts it to NRGBA,
// preserving the per-pixel alpha the mark predicate classifies on.
func DecodeMask(r io.Reader) (*image.NRGBA, error) {
	img, _, err := DecodeImage(r)
	if err != nil {
		return nil, err
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return nrgba, nil
}
