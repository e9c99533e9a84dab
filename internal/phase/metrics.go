package phase

import (
	"image"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

// LuminanceStats computes the mean and standard deviation of the base
// micrograph's luminance, normalised to [0,1]. The image is processed in
// horizontal strips, one goroutine per strip, each accumulating a local
// 256-bin histogram; the merged histogram is summarised with gonum.
//
// These figures are acquisition-quality context for the report and never
// influence the phase fraction.
func LuminanceStats(img image.Image) models.LuminanceStats {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return models.LuminanceStats{}
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	histograms := make(chan [256]float64, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			var hist [256]float64
			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					// ITU-R BT.601 luma, 16-bit channels down to 8-bit bins
					luma := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
					hist[luma]++
				}
			}
			histograms <- hist
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(histograms)
	}()

	var weights [256]float64
	for hist := range histograms {
		for bin, count := range hist {
			weights[bin] += count
		}
	}

	levels := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i) / 255
	}

	stats := models.LuminanceStats{
		Mean: stat.Mean(levels, weights[:]),
	}
	// The unbiased estimator divides by n-1; a single-pixel image has no
	// spread to report.
	if width*height > 1 {
		stats.StdDev = stat.StdDev(levels, weights[:])
	}
	return stats
}
