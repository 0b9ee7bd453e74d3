// Command binarize converts a grayscale document scan into a black/white
// mask using a trained U-Net exported to ONNX.
//
// Usage: binarize -input scan.png -output mask.png -model unet.onnx
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"doc-binarizer/internal/binarize"
	"doc-binarizer/internal/imgio"
	"doc-binarizer/internal/unet"
	"doc-binarizer/internal/version"
)

// Exit codes, one per failure class.
const (
	exitUsage  = 2
	exitInput  = 3
	exitModel  = 4
	exitOutput = 5
)

func main() {
	inputPath := flag.String("input", "", "Input grayscale image (PNG, JPEG, or TIFF)")
	outputPath := flag.String("output", "", "Output binarized image")
	modelPath := flag.String("model", "unet.onnx", "Trained U-Net in ONNX format")
	batchSize := flag.Int("batchsize", 20, "Patches per model call")
	patchSize := flag.Int("size", 128, "Patch size in pixels (must match the model)")
	raw := flag.Bool("raw", false, "Skip Otsu/morphology post-processing")
	cuda := flag.Bool("cuda", false, "Run inference on the CUDA backend")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("binarize", version.String())
		return
	}
	if *inputPath == "" || *outputPath == "" {
		fmt.Println("Usage: binarize -input <scan> -output <mask> [-model unet.onnx] [-batchsize 20] [-raw]")
		os.Exit(exitUsage)
	}

	start := time.Now()

	img, err := imgio.LoadGray(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load input: %v\n", err)
		os.Exit(exitInput)
	}
	defer img.Close()
	fmt.Printf("Loaded %s: %dx%d pixels\n", *inputPath, img.Cols(), img.Rows())

	params := unet.DefaultParams().WithBatchSize(*batchSize)
	params.PatchWidth = *patchSize
	params.PatchHeight = *patchSize
	params.UseCUDA = *cuda

	model, err := unet.NewRunner(*modelPath, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
		os.Exit(exitModel)
	}
	defer model.Close()

	opts := binarize.Options{
		PatchWidth:  params.PatchWidth,
		PatchHeight: params.PatchHeight,
		BatchSize:   params.BatchSize,
	}

	run := binarize.Binarize
	if *raw {
		run = binarize.ProcessImage
	}
	mask, err := run(img, model, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inference failed: %v\n", err)
		os.Exit(exitModel)
	}
	defer mask.Close()

	if err := imgio.SaveGray(*outputPath, mask); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(exitOutput)
	}

	fmt.Printf("finished in %.2f seconds\n", time.Since(start).Seconds())
}
