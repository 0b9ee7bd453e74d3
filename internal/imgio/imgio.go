// Package imgio loads and saves grayscale raster images and converts
// between the standard library image types and OpenCV Mats.
package imgio

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

// LoadGray reads a raster image (PNG, JPEG, or TIFF) and returns it as a
// single-channel 8-bit Mat. Color inputs are converted to grayscale.
func LoadGray(path string) (gocv.Mat, error) {
	file, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return GrayToMat(ToGray(img))
}

// ToGray converts any image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// GrayToMat wraps a grayscale image's pixels in a single-channel Mat.
func GrayToMat(gray *image.Gray) (gocv.Mat, error) {
	bounds := gray.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	if h == 0 || w == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	// image.NewGray guarantees Stride == width, but a sub-image does not.
	pix := gray.Pix
	if gray.Stride != w {
		pix = make([]uint8, h*w)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	return mat, nil
}

// MatToGray copies a single-channel 8-bit Mat into an image.Gray.
func MatToGray(mat gocv.Mat) (*image.Gray, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("mat type %v, want CV8UC1", mat.Type())
	}

	// Regions share the parent's memory with a wider stride; clone to
	// get a contiguous buffer before reading bytes out.
	contiguous := mat.Clone()
	defer contiguous.Close()

	h, w := contiguous.Rows(), contiguous.Cols()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	copy(gray.Pix, contiguous.ToBytes())
	return gray, nil
}

// SaveGray writes a single-channel 8-bit Mat to disk. The format follows
// the file extension: .png, .jpg/.jpeg, or .tif/.tiff.
func SaveGray(path string, mat gocv.Mat) error {
	gray, err := MatToGray(mat)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, gray)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, gray, nil)
	case ".tif", ".tiff":
		err = tiff.Encode(file, gray, nil)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// SupportedFormats returns the recognized image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}
}

// IsSupportedFormat checks if the given path has a supported extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
