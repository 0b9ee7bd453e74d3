// Package unet runs a trained U-Net binarization network exported to ONNX
// through the OpenCV DNN module.
package unet

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"doc-binarizer/internal/tiling"
)

// Params configures the network runner.
type Params struct {
	// PatchWidth and PatchHeight must match the network's input layer.
	PatchWidth  int
	PatchHeight int

	// BatchSize is the number of patches sent to the backend per
	// forward pass. Memory/throughput knob only.
	BatchSize int

	// UseCUDA selects the CUDA backend when OpenCV was built with it.
	UseCUDA bool
}

// DefaultParams returns parameters matching the reference network:
// 128x128 single-channel patches, 20 per batch, CPU inference.
func DefaultParams() Params {
	return Params{
		PatchWidth:  tiling.DefaultPatchWidth,
		PatchHeight: tiling.DefaultPatchHeight,
		BatchSize:   20,
	}
}

// WithBatchSize returns a copy of params with the batch size replaced.
func (p Params) WithBatchSize(n int) Params {
	if n > 0 {
		p.BatchSize = n
	}
	return p
}

// Runner implements binarize.Model on top of an ONNX network.
type Runner struct {
	net    gocv.Net
	params Params
}

// NewRunner loads an ONNX model from disk.
func NewRunner(modelPath string, params Params) (*Runner, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load ONNX model from %s", modelPath)
	}

	if params.UseCUDA {
		if err := net.SetPreferableBackend(gocv.NetBackendCUDA); err != nil {
			net.Close()
			return nil, fmt.Errorf("failed to select CUDA backend: %w", err)
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCUDA); err != nil {
			net.Close()
			return nil, fmt.Errorf("failed to select CUDA target: %w", err)
		}
	}

	return &Runner{net: net, params: params}, nil
}

// Close releases the network.
func (r *Runner) Close() error {
	return r.net.Close()
}

// Predict runs the network over all patches, batchSize at a time, and
// returns one mask per patch in input order. Patches are single-channel
// CV32F in [0, 1] at the configured size; masks come back the same way.
func (r *Runner) Predict(patches []gocv.Mat, batchSize int) ([]gocv.Mat, error) {
	if batchSize <= 0 {
		batchSize = r.params.BatchSize
	}

	for i := range patches {
		if patches[i].Rows() != r.params.PatchHeight || patches[i].Cols() != r.params.PatchWidth {
			return nil, fmt.Errorf("patch %d is %dx%d, network expects %dx%d",
				i, patches[i].Cols(), patches[i].Rows(), r.params.PatchWidth, r.params.PatchHeight)
		}
	}

	masks := make([]gocv.Mat, 0, len(patches))
	for start := 0; start < len(patches); start += batchSize {
		end := min(start+batchSize, len(patches))

		batch, err := r.forward(patches[start:end])
		if err != nil {
			tiling.CloseAll(masks)
			return nil, err
		}
		masks = append(masks, batch...)
	}
	return masks, nil
}

// forward runs one batch through the network.
func (r *Runner) forward(batch []gocv.Mat) ([]gocv.Mat, error) {
	size := image.Point{X: r.params.PatchWidth, Y: r.params.PatchHeight}

	blob := gocv.NewMat()
	defer blob.Close()
	gocv.BlobFromImages(batch, &blob, 1.0, size, gocv.NewScalar(0, 0, 0, 0), false, false, gocv.MatTypeCV32F)

	r.net.SetInput(blob, "")
	output := r.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) == 0 || dims[0] != len(batch) {
		return nil, fmt.Errorf("network returned %v masks for a batch of %d", dims, len(batch))
	}

	masks := make([]gocv.Mat, len(batch))
	for i := range masks {
		masks[i] = gocv.NewMat()
	}
	gocv.ImagesFromBlob(output, masks)

	for i := range masks {
		if masks[i].Rows() != r.params.PatchHeight || masks[i].Cols() != r.params.PatchWidth {
			tiling.CloseAll(masks)
			return nil, fmt.Errorf("network returned %dx%d mask, want %dx%d",
				masks[i].Cols(), masks[i].Rows(), r.params.PatchWidth, r.params.PatchHeight)
		}
	}
	return masks, nil
}
