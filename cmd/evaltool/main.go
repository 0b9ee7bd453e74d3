// Command evaltool scores binarized pages against ground truth and
// optionally runs an OCR legibility check on the predictions.
//
// -pred and -gt accept either two image files or two directories whose
// files are matched by name.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"doc-binarizer/internal/imgio"
	"doc-binarizer/internal/metrics"
	"doc-binarizer/internal/ocr"
	"doc-binarizer/internal/version"
)

// Exit codes, one per failure class.
const (
	exitUsage    = 2
	exitInput    = 3
	exitMismatch = 7
)

func main() {
	predPath := flag.String("pred", "", "Binarized image or directory of images")
	truthPath := flag.String("gt", "", "Ground-truth image or directory of images")
	runOCR := flag.Bool("ocr", false, "Also report OCR word confidence on predictions")
	language := flag.String("lang", "eng", "Tesseract language for -ocr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("evaltool", version.String())
		return
	}
	if *predPath == "" || *truthPath == "" {
		fmt.Println("Usage: evaltool -pred <image|dir> -gt <image|dir> [-ocr]")
		os.Exit(exitUsage)
	}

	pairs, err := collectPairs(*predPath, *truthPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitInput)
	}

	var engine *ocr.Engine
	if *runOCR {
		engine, err = ocr.NewEngine(*language)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start OCR engine: %v\n", err)
			os.Exit(exitInput)
		}
		defer engine.Close()
	}

	fmt.Printf("%-24s %10s %10s %10s %10s %8s", "Page", "Precision", "Recall", "F-measure", "PSNR", "NRM")
	if *runOCR {
		fmt.Printf(" %8s", "OCR conf")
	}
	fmt.Println()

	var results []metrics.Result
	for _, pair := range pairs {
		pred, err := imgio.LoadGray(pair[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load prediction: %v\n", err)
			os.Exit(exitInput)
		}
		truth, err := imgio.LoadGray(pair[1])
		if err != nil {
			pred.Close()
			fmt.Fprintf(os.Stderr, "Failed to load ground truth: %v\n", err)
			os.Exit(exitInput)
		}

		r, err := metrics.Evaluate(pred, truth)
		if err != nil {
			pred.Close()
			truth.Close()
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(pair[0]), err)
			os.Exit(exitMismatch)
		}
		results = append(results, r)

		fmt.Printf("%-24s %10.4f %10.4f %10.4f %10.2f %8.4f",
			filepath.Base(pair[0]), r.Precision, r.Recall, r.FMeasure, r.PSNR, r.NRM)
		if *runOCR {
			_, confidence, err := engine.Recognize(pred)
			if err != nil {
				fmt.Printf(" %8s", "n/a")
			} else {
				fmt.Printf(" %8.1f", confidence)
			}
		}
		fmt.Println()

		pred.Close()
		truth.Close()
	}

	if len(results) > 1 {
		mean := metrics.Mean(results)
		fmt.Printf("%-24s %10.4f %10.4f %10.4f %10.2f %8.4f\n",
			"mean", mean.Precision, mean.Recall, mean.FMeasure, mean.PSNR, mean.NRM)
	}
}

// collectPairs resolves the pred/gt arguments into [prediction, truth]
// file path pairs.
func collectPairs(predPath, truthPath string) ([][2]string, error) {
	predInfo, err := os.Stat(predPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", predPath, err)
	}
	truthInfo, err := os.Stat(truthPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", truthPath, err)
	}
	if predInfo.IsDir() != truthInfo.IsDir() {
		return nil, fmt.Errorf("-pred and -gt must both be files or both be directories")
	}

	if !predInfo.IsDir() {
		return [][2]string{{predPath, truthPath}}, nil
	}

	entries, err := os.ReadDir(predPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", predPath, err)
	}

	var pairs [][2]string
	for _, entry := range entries {
		if entry.IsDir() || !imgio.IsSupportedFormat(entry.Name()) {
			continue
		}
		truthFile := filepath.Join(truthPath, entry.Name())
		if _, err := os.Stat(truthFile); err != nil {
			return nil, fmt.Errorf("no ground truth for %s: %w", entry.Name(), err)
		}
		pairs = append(pairs, [2]string{filepath.Join(predPath, entry.Name()), truthFile})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no image pairs found in %s", predPath)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs, nil
}
