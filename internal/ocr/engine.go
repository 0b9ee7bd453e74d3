// Package ocr provides a Tesseract-backed legibility check for binarized
// pages: if a binarization is any good, the OCR confidence on its output
// should not crater.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Engine wraps a Tesseract client.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an OCR engine for the given language ("eng" when
// empty).
func NewEngine(language string) (*Engine, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize runs OCR over a full grayscale or binary page and returns the
// recognized text with the mean word confidence in [0, 100].
func (e *Engine) Recognize(img gocv.Mat) (string, float64, error) {
	if img.Empty() {
		return "", 0, fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", 0, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return text, 0, nil // text without confidence is still useful
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	confidence := 0.0
	if len(boxes) > 0 {
		confidence = sum / float64(len(boxes))
	}
	return text, confidence, nil
}
