// Package phase implements the mask-to-metric engine: given the dimensions
// of a base micrograph and a user-drawn overlay mask aligned to the same
// pixel grid, it counts the pixels marked as pearlite and reports the marked
// fraction as a percentage.
//
// Classification is a pure, single-pass scan with no hidden state. Each call
// operates only on its own inputs, so concurrent analyses need no
// synchronisation.
package phase

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

var (
	// ErrDimensionMismatch indicates the overlay mask does not align with
	// the base image grid. The engine never truncates or stretches.
	ErrDimensionMismatch = errors.New("mask dimensions do not match base image")

	// ErrEmptyImage indicates a zero-area base image, for which the marked
	// fraction is undefined.
	ErrEmptyImage = errors.New("image has zero area")
)

// MarkPredicate decides whether one mask sample counts as marked. It must be
// pure: anti-aliased brush edges are resolved by this threshold alone, so the
// same mask always yields the same percentage.
type MarkPredicate func(r, g, b, a uint8) bool

// Classify scans the overlay mask and computes the pearlite fraction
// relative to the base image's W*H pixel grid.
//
// The percentage is rounded to two decimal places, round-half-up.
func Classify(baseWidth, baseHeight int, mask *image.NRGBA, pred MarkPredicate) (models.ClassificationResult, error) {
	if baseWidth <= 0 || baseHeight <= 0 {
		return models.ClassificationResult{}, fmt.Errorf("%w: %dx%d", ErrEmptyImage, baseWidth, baseHeight)
	}
	if mask == nil {
		return models.ClassificationResult{}, fmt.Errorf("%w: mask is nil, base is %dx%d",
			ErrDimensionMismatch, baseWidth, baseHeight)
	}
	bounds := mask.Bounds()
	if bounds.Dx() != baseWidth || bounds.Dy() != baseHeight {
		return models.ClassificationResult{}, fmt.Errorf("%w: mask is %dx%d, base is %dx%d",
			ErrDimensionMismatch, bounds.Dx(), bounds.Dy(), baseWidth, baseHeight)
	}
	if pred == nil {
		pred = DefaultOptions().Predicate()
	}

	marked := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := mask.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if pred(mask.Pix[i], mask.Pix[i+1], mask.Pix[i+2], mask.Pix[i+3]) {
				marked++
			}
			i += 4
		}
	}

	total := baseWidth * baseHeight
	return models.ClassificationResult{
		MarkedCount: marked,
		TotalCount:  total,
		Percentage:  roundPercentage(100 * float64(marked) / float64(total)),
	}, nil
}

// roundPercentage rounds to two decimal places, round-half-up.
func roundPercentage(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
