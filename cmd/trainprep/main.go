// Command trainprep stages train and validation splits of a paired
// document dataset and optionally applies noise augmentation to the
// staged training inputs.
//
// The input directory holds scans under in/ (*_in.png) and ground-truth
// masks under gt/ (*_gt.png). The staged layout under -tmp mirrors it,
// ready for a training framework to consume.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"doc-binarizer/internal/augment"
	"doc-binarizer/internal/dataset"
	"doc-binarizer/internal/imgio"
	"doc-binarizer/internal/version"
)

// Exit codes, one per failure class.
const (
	exitUsage   = 2
	exitInput   = 3
	exitStaging = 6
)

// Augmentation modes drawn per image; modes above the named ones leave
// the image untouched, so roughly two in five images get noise.
const (
	gaussianNoiseMode   = 0
	saltPepperNoiseMode = 1
	augmentModes        = 5
)

func main() {
	inputDir := flag.String("input", filepath.Join(".", "input"), "Directory with in/ and gt/ image pairs")
	tmpDir := flag.String("tmp", filepath.Join(".", "tmp"), "Directory for staged training files")
	trainPct := flag.Int("train", 80, "Percent of pairs used for training")
	valPct := flag.Int("val", 20, "Percent of pairs used for validation")
	augmentate := flag.Bool("augmentate", false, "Apply noise augmentation to staged training inputs")
	seed := flag.Int64("seed", 1, "Random seed for augmentation")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("trainprep", version.String())
		return
	}

	start := time.Now()

	pairs, err := dataset.Discover(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read dataset: %v\n", err)
		os.Exit(exitInput)
	}
	if len(pairs) == 0 {
		fmt.Fprintf(os.Stderr, "No image pairs found in %s\n", *inputDir)
		os.Exit(exitInput)
	}

	train, val, err := dataset.Split(pairs, *trainPct, *valPct)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitUsage)
	}
	fmt.Printf("Found %d pairs: %d train, %d validation\n", len(pairs), len(train), len(val))

	if err := os.MkdirAll(*tmpDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *tmpDir, err)
		os.Exit(exitStaging)
	}

	trainDir := filepath.Join(*tmpDir, "train")
	if err := dataset.Stage(trainDir, train); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stage training set: %v\n", err)
		os.Exit(exitStaging)
	}
	valDir := filepath.Join(*tmpDir, "validation")
	if err := dataset.Stage(valDir, val); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stage validation set: %v\n", err)
		os.Exit(exitStaging)
	}

	if *augmentate {
		rng := rand.New(rand.NewSource(*seed))
		augmented, err := augmentStaged(trainDir, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Augmentation failed: %v\n", err)
			os.Exit(exitStaging)
		}
		fmt.Printf("Augmented %d of %d training inputs (seed %d)\n", augmented, len(train), *seed)
	}

	fmt.Printf("finished in %.2f seconds\n", time.Since(start).Seconds())
}

// augmentStaged rewrites a random subset of the staged training inputs
// with noise. Ground-truth masks are never touched.
func augmentStaged(dir string, rng *rand.Rand) (int, error) {
	pairs, err := dataset.Discover(dir)
	if err != nil {
		return 0, err
	}

	augmented := 0
	for _, pair := range pairs {
		mode := rng.Intn(augmentModes)
		if mode != gaussianNoiseMode && mode != saltPepperNoiseMode {
			continue
		}

		img, err := imgio.LoadGray(pair.InputPath)
		if err != nil {
			return augmented, err
		}

		var noisy gocv.Mat
		switch mode {
		case gaussianNoiseMode:
			noisy = augment.GaussianNoise(img, 0, 10, rng)
		case saltPepperNoiseMode:
			noisy = augment.SaltPepperNoise(img, 10, rng)
		}
		img.Close()

		err = imgio.SaveGray(pair.InputPath, noisy)
		noisy.Close()
		if err != nil {
			return augmented, err
		}
		augmented++
	}
	return augmented, nil
}
