// Package augment provides the noise augmentations used when preparing
// training data. Every function takes the random source explicitly so runs
// are reproducible from a seed.
package augment

import (
	"math/rand"

	"gocv.io/x/gocv"
)

// GaussianNoise returns a copy of the 8-bit grayscale image with additive
// white gaussian noise, clamped to [0, 255].
func GaussianNoise(img gocv.Mat, mean, sigma float64, rng *rand.Rand) gocv.Mat {
	out := img.Clone()
	rows, cols := out.Rows(), out.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := float64(out.GetUCharAt(y, x)) + rng.NormFloat64()*sigma + mean
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.SetUCharAt(y, x, uint8(v))
		}
	}
	return out
}

// SaltPepperNoise returns a copy of the 8-bit grayscale image with percent
// of its pixels forced to white or black, half each.
func SaltPepperNoise(img gocv.Mat, percent float64, rng *rand.Rand) gocv.Mat {
	out := img.Clone()
	rows, cols := out.Rows(), out.Cols()
	n := int(float64(rows*cols) * percent / 100)

	for i := 0; i < n/2; i++ {
		out.SetUCharAt(rng.Intn(rows), rng.Intn(cols), 255) // salt
	}
	for i := 0; i < n/2; i++ {
		out.SetUCharAt(rng.Intn(rows), rng.Intn(cols), 0) // pepper
	}
	return out
}

// NormalizePair scales an input/ground-truth pair to [0, 1] float images.
// The ground truth is additionally snapped to hard 0/1 at the midpoint, so
// label anti-aliasing never leaks gray into the training target.
func NormalizePair(in, gt gocv.Mat) (gocv.Mat, gocv.Mat) {
	inNorm := gocv.NewMat()
	in.ConvertToWithParams(&inNorm, gocv.MatTypeCV32F, 1.0/255.0, 0)

	gtScaled := gocv.NewMat()
	gt.ConvertToWithParams(&gtScaled, gocv.MatTypeCV32F, 1.0/255.0, 0)
	gtNorm := gocv.NewMat()
	gocv.Threshold(gtScaled, &gtNorm, 0.5, 1.0, gocv.ThresholdBinary)
	gtScaled.Close()

	return inNorm, gtNorm
}
