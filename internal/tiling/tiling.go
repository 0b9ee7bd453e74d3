// Package tiling splits images into fixed-size patches for batched model
// inference and stitches prediction patches back to the original geometry.
package tiling

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default patch dimensions, matching the network's input layer.
const (
	DefaultPatchWidth  = 128
	DefaultPatchHeight = 128
)

// InsufficientPatchesError reports a stitch attempt where the patch
// sequence is shorter than the grid implied by the target dimensions.
type InsufficientPatchesError struct {
	Have int
	Want int
}

func (e *InsufficientPatchesError) Error() string {
	return fmt.Sprintf("insufficient patches for given dimensions: have %d, want %d", e.Have, e.Want)
}

// Split cuts img into non-overlapping sizeX×sizeY windows.
//
// If the image dimensions are not multiples of the window size, the image
// is first extended with a constant white border: borderY rows on top and
// bottom, then borderX columns on left and right. Windows are collected in
// raster order (left to right, then top to bottom); a remainder strip
// thinner than a window, which the off-by-one in the border formula can
// leave behind, is dropped. The returned borders are what Combine needs to
// invert the operation.
//
// The returned patches are owned by the caller; close them with CloseAll.
func Split(img gocv.Mat, sizeX, sizeY int) (patches []gocv.Mat, borderY, borderX int, err error) {
	if img.Empty() {
		return nil, 0, 0, fmt.Errorf("split: empty image")
	}
	if sizeX <= 0 || sizeY <= 0 {
		return nil, 0, 0, fmt.Errorf("split: invalid patch size %dx%d", sizeX, sizeY)
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	padded := img.Clone()
	maxY, maxX := padded.Rows(), padded.Cols()

	if maxY%sizeY != 0 {
		borderY = (sizeY - maxY%sizeY + 1) / 2
		bordered := gocv.NewMat()
		gocv.CopyMakeBorder(padded, &bordered, borderY, borderY, 0, 0, gocv.BorderConstant, white)
		padded.Close()
		padded = bordered
		maxY = padded.Rows()
	}
	if maxX%sizeX != 0 {
		borderX = (sizeX - maxX%sizeX + 1) / 2
		bordered := gocv.NewMat()
		gocv.CopyMakeBorder(padded, &bordered, 0, 0, borderX, borderX, gocv.BorderConstant, white)
		padded.Close()
		padded = bordered
		maxX = padded.Cols()
	}
	defer padded.Close()

	for y := 0; y+sizeY <= maxY; y += sizeY {
		for x := 0; x+sizeX <= maxX; x += sizeX {
			window := padded.Region(image.Rect(x, y, x+sizeX, y+sizeY))
			patches = append(patches, window.Clone())
			window.Close()
		}
	}
	return patches, borderY, borderX, nil
}

// Combine stitches a patch sequence produced by Split back into a single
// image of maxY×maxX (the original, unpadded dimensions).
//
// All patches must share the size of the first one. The patch order is the
// raster-scan contract of Split; no positional metadata exists, so a
// sequence shorter than the grid requires is an InsufficientPatchesError
// rather than a silently corrupted image. Extra trailing patches are
// ignored.
func Combine(patches []gocv.Mat, borderY, borderX, maxY, maxX int) (gocv.Mat, error) {
	if len(patches) == 0 {
		return gocv.NewMat(), fmt.Errorf("combine: no patches")
	}
	sizeY, sizeX := patches[0].Rows(), patches[0].Cols()
	if sizeY <= 0 || sizeX <= 0 {
		return gocv.NewMat(), fmt.Errorf("combine: empty first patch")
	}

	fullY := maxY + 2*borderY
	fullX := maxX + 2*borderX
	want := (fullY / sizeY) * (fullX / sizeX)
	if len(patches) < want {
		return gocv.NewMat(), &InsufficientPatchesError{Have: len(patches), Want: want}
	}

	canvas := gocv.NewMatWithSize(fullY, fullX, patches[0].Type())
	i := 0
	for y := 0; y+sizeY <= fullY; y += sizeY {
		for x := 0; x+sizeX <= fullX; x += sizeX {
			if patches[i].Rows() != sizeY || patches[i].Cols() != sizeX {
				canvas.Close()
				return gocv.NewMat(), fmt.Errorf("combine: patch %d is %dx%d, want %dx%d",
					i, patches[i].Cols(), patches[i].Rows(), sizeX, sizeY)
			}
			window := canvas.Region(image.Rect(x, y, x+sizeX, y+sizeY))
			patches[i].CopyTo(&window)
			window.Close()
			i++
		}
	}

	cropped := canvas.Region(image.Rect(borderX, borderY, fullX-borderX, fullY-borderY))
	out := cropped.Clone()
	cropped.Close()
	canvas.Close()
	return out, nil
}

// GridSize returns the number of patches Split produces for an image of
// maxY×maxX at the given patch size, after padding.
func GridSize(maxY, maxX, sizeX, sizeY int) int {
	fullY, fullX := maxY, maxX
	if maxY%sizeY != 0 {
		fullY += 2 * ((sizeY - maxY%sizeY + 1) / 2)
	}
	if maxX%sizeX != 0 {
		fullX += 2 * ((sizeX - maxX%sizeX + 1) / 2)
	}
	return (fullY / sizeY) * (fullX / sizeX)
}

// CloseAll releases every Mat in the slice.
func CloseAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
