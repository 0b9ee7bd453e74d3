// Package dataset discovers paired input/ground-truth document images and
// stages train/validation splits on disk.
//
// The on-disk layout pairs files by name: <root>/in/<name>_in.png holds a
// scan and <root>/gt/<name>_gt.png holds its hand-labeled binarization.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"doc-binarizer/internal/imgio"
)

// Pair is one input scan with its ground-truth mask.
type Pair struct {
	Name      string // shared prefix, e.g. "0042" for 0042_in.png
	InputPath string
	TruthPath string
}

// Discover lists all pairs under root, sorted by name. Every input must
// have a ground-truth counterpart.
func Discover(root string) ([]Pair, error) {
	inDir := filepath.Join(root, "in")
	gtDir := filepath.Join(root, "gt")

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if entry.IsDir() || !imgio.IsSupportedFormat(entry.Name()) {
			continue
		}
		ext := filepath.Ext(entry.Name())
		base := strings.TrimSuffix(entry.Name(), ext)
		name, ok := strings.CutSuffix(base, "_in")
		if !ok {
			continue
		}

		truthPath := filepath.Join(gtDir, name+"_gt"+ext)
		if _, err := os.Stat(truthPath); err != nil {
			return nil, fmt.Errorf("input %s has no ground truth: %w", entry.Name(), err)
		}

		pairs = append(pairs, Pair{
			Name:      name,
			InputPath: filepath.Join(inDir, entry.Name()),
			TruthPath: truthPath,
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	return pairs, nil
}

// Split divides pairs into train and validation sets by percentage. The
// split is positional over the sorted pair list, so a given dataset always
// splits the same way. Percentages must be positive and sum to 100.
func Split(pairs []Pair, trainPct, valPct int) (train, val []Pair, err error) {
	if trainPct <= 0 || valPct <= 0 || trainPct+valPct != 100 {
		return nil, nil, fmt.Errorf("train/val percentages %d/%d must be positive and sum to 100", trainPct, valPct)
	}
	cut := len(pairs) * trainPct / 100
	return pairs[:cut], pairs[cut:], nil
}

// Stage materializes a split under dir, creating dir/in and dir/gt and
// copying every pair into them. The directory must not already exist;
// clobbering a previous run's staging area is treated as fatal.
func Stage(dir string, pairs []Pair) error {
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	inDir := filepath.Join(dir, "in")
	gtDir := filepath.Join(dir, "gt")
	if err := os.Mkdir(inDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	if err := os.Mkdir(gtDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	for _, pair := range pairs {
		if err := copyFile(pair.InputPath, filepath.Join(inDir, filepath.Base(pair.InputPath))); err != nil {
			return err
		}
		if err := copyFile(pair.TruthPath, filepath.Join(gtDir, filepath.Base(pair.TruthPath))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
