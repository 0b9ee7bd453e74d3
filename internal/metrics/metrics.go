// Package metrics scores a binarized image against its ground truth using
// the measures customary for document binarization benchmarks.
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Foreground is ink: a pixel strictly below this level counts as text.
const foregroundThreshold = 128

// Result holds the scores for one prediction/ground-truth pair.
type Result struct {
	Precision float64
	Recall    float64
	FMeasure  float64
	PSNR      float64 // +Inf for a pixel-perfect match
	NRM       float64 // negative rate metric, lower is better
}

// Evaluate compares an 8-bit prediction against an 8-bit ground truth of
// the same dimensions.
func Evaluate(pred, truth gocv.Mat) (Result, error) {
	if pred.Empty() || truth.Empty() {
		return Result{}, fmt.Errorf("empty image")
	}
	if pred.Rows() != truth.Rows() || pred.Cols() != truth.Cols() {
		return Result{}, fmt.Errorf("size mismatch: prediction %dx%d, ground truth %dx%d",
			pred.Cols(), pred.Rows(), truth.Cols(), truth.Rows())
	}

	rows, cols := pred.Rows(), pred.Cols()
	var tp, fp, fn, tn float64
	sqErr := make([]float64, 0, rows*cols)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := pred.GetUCharAt(y, x)
			g := truth.GetUCharAt(y, x)

			predInk := p < foregroundThreshold
			truthInk := g < foregroundThreshold
			switch {
			case predInk && truthInk:
				tp++
			case predInk && !truthInk:
				fp++
			case !predInk && truthInk:
				fn++
			default:
				tn++
			}

			d := float64(p) - float64(g)
			sqErr = append(sqErr, d*d)
		}
	}

	var r Result
	if tp+fp > 0 {
		r.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		r.Recall = tp / (tp + fn)
	}
	if r.Precision+r.Recall > 0 {
		r.FMeasure = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}

	mse := stat.Mean(sqErr, nil)
	if mse == 0 {
		r.PSNR = math.Inf(1)
	} else {
		r.PSNR = 10 * math.Log10(255*255/mse)
	}

	var fnRate, fpRate float64
	if fn+tp > 0 {
		fnRate = fn / (fn + tp)
	}
	if fp+tn > 0 {
		fpRate = fp / (fp + tn)
	}
	r.NRM = (fnRate + fpRate) / 2

	return r, nil
}

// Mean averages a set of results field by field. PSNR values of +Inf
// (perfect pages) are averaged as-is and propagate.
func Mean(results []Result) Result {
	if len(results) == 0 {
		return Result{}
	}
	precision := make([]float64, len(results))
	recall := make([]float64, len(results))
	fMeasure := make([]float64, len(results))
	psnr := make([]float64, len(results))
	nrm := make([]float64, len(results))
	for i, r := range results {
		precision[i] = r.Precision
		recall[i] = r.Recall
		fMeasure[i] = r.FMeasure
		psnr[i] = r.PSNR
		nrm[i] = r.NRM
	}
	n := float64(len(results))
	return Result{
		Precision: floats.Sum(precision) / n,
		Recall:    floats.Sum(recall) / n,
		FMeasure:  floats.Sum(fMeasure) / n,
		PSNR:      floats.Sum(psnr) / n,
		NRM:       floats.Sum(nrm) / n,
	}
}
