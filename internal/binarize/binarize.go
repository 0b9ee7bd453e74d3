// Package binarize runs the patch-wise binarization pipeline: normalize,
// tile, predict, stitch, then clean the result with Otsu thresholding and
// a light morphological pass.
package binarize

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"doc-binarizer/internal/tiling"
)

// Model produces a binarization mask for each patch in the input. Patches
// are single-channel CV32F in [0, 1]; masks come back in the same shape
// and range, in the same order. The batch size bounds how many patches go
// to the backend per call and has no effect on the result.
type Model interface {
	Predict(patches []gocv.Mat, batchSize int) ([]gocv.Mat, error)
}

// Options configures the pipeline.
type Options struct {
	PatchWidth  int
	PatchHeight int
	BatchSize   int // patches per Predict call
}

// DefaultOptions returns options matching the trained network: 128x128
// patches, 20 per batch.
func DefaultOptions() Options {
	return Options{
		PatchWidth:  tiling.DefaultPatchWidth,
		PatchHeight: tiling.DefaultPatchHeight,
		BatchSize:   20,
	}
}

// Normalize converts an 8-bit grayscale image to CV32F in [0, 1].
func Normalize(img gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	img.ConvertToWithParams(&out, gocv.MatTypeCV32F, 1.0/255.0, 0)
	return out
}

// Denormalize converts a CV32F image in [0, 1] back to 8-bit [0, 255].
func Denormalize(img gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	img.ConvertToWithParams(&out, gocv.MatTypeCV8U, 255, 0)
	return out
}

// Postprocess cleans a grayscale 8-bit image: an Otsu-selected binary
// threshold, then one erode and one dilate with a 3x3 cross element. The
// erode/dilate pair removes isolated speckles without thinning strokes.
func Postprocess(img gocv.Mat) gocv.Mat {
	binary := gocv.NewMat()
	gocv.Threshold(img, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphCross, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	eroded := gocv.NewMat()
	gocv.Erode(binary, &eroded, kernel)
	binary.Close()

	dilated := gocv.NewMat()
	gocv.Dilate(eroded, &dilated, kernel)
	eroded.Close()

	return dilated
}

// ProcessImage runs the model over an 8-bit grayscale image of any size:
// splits it into patches, normalizes them, predicts in batches, stitches
// the masks back together, and rescales to 8-bit. The output has the same
// dimensions as the input.
func ProcessImage(img gocv.Mat, model Model, opts Options) (gocv.Mat, error) {
	patches, borderY, borderX, err := tiling.Split(img, opts.PatchWidth, opts.PatchHeight)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer tiling.CloseAll(patches)

	normalized := make([]gocv.Mat, len(patches))
	for i := range patches {
		normalized[i] = Normalize(patches[i])
	}
	defer tiling.CloseAll(normalized)

	masks, err := model.Predict(normalized, opts.BatchSize)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("predict: %w", err)
	}
	defer tiling.CloseAll(masks)

	combined, err := tiling.Combine(masks, borderY, borderX, img.Rows(), img.Cols())
	if err != nil {
		return gocv.NewMat(), err
	}
	defer combined.Close()

	return Denormalize(combined), nil
}

// Binarize runs the full pipeline: model inference followed by
// post-processing. Input and output are 8-bit grayscale; the output is a
// two-level 0/255 mask of the input's dimensions.
func Binarize(img gocv.Mat, model Model, opts Options) (gocv.Mat, error) {
	processed, err := ProcessImage(img, model, opts)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer processed.Close()
	return Postprocess(processed), nil
}
