package metrics

import (
	"math"
	"testing"

	"gocv.io/x/gocv"
)

// binaryMat builds an image where fn decides ink (0) vs background (255).
func binaryMat(rows, cols int, ink func(y, x int) bool) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if ink(y, x) {
				m.SetUCharAt(y, x, 0)
			} else {
				m.SetUCharAt(y, x, 255)
			}
		}
	}
	return m
}

func TestEvaluatePerfectMatch(t *testing.T) {
	ink := func(y, x int) bool { return x < 10 }
	pred := binaryMat(20, 20, ink)
	defer pred.Close()
	truth := binaryMat(20, 20, ink)
	defer truth.Close()

	r, err := Evaluate(pred, truth)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r.Precision != 1 || r.Recall != 1 || r.FMeasure != 1 {
		t.Errorf("P/R/F = %v/%v/%v, want 1/1/1", r.Precision, r.Recall, r.FMeasure)
	}
	if !math.IsInf(r.PSNR, 1) {
		t.Errorf("PSNR = %v, want +Inf", r.PSNR)
	}
	if r.NRM != 0 {
		t.Errorf("NRM = %v, want 0", r.NRM)
	}
}

func TestEvaluateKnownCounts(t *testing.T) {
	// Truth: left half ink. Prediction: left quarter ink plus a strip of
	// false positives on the right edge.
	truth := binaryMat(10, 20, func(y, x int) bool { return x < 10 })
	defer truth.Close()
	pred := binaryMat(10, 20, func(y, x int) bool { return x < 5 || x >= 18 })
	defer pred.Close()

	r, err := Evaluate(pred, truth)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Per row: TP=5, FP=2, FN=5, TN=8.
	wantPrecision := 5.0 / 7.0
	wantRecall := 0.5
	if math.Abs(r.Precision-wantPrecision) > 1e-9 {
		t.Errorf("Precision = %v, want %v", r.Precision, wantPrecision)
	}
	if math.Abs(r.Recall-wantRecall) > 1e-9 {
		t.Errorf("Recall = %v, want %v", r.Recall, wantRecall)
	}
	wantF := 2 * wantPrecision * wantRecall / (wantPrecision + wantRecall)
	if math.Abs(r.FMeasure-wantF) > 1e-9 {
		t.Errorf("FMeasure = %v, want %v", r.FMeasure, wantF)
	}
	wantNRM := (5.0/10.0 + 2.0/10.0) / 2
	if math.Abs(r.NRM-wantNRM) > 1e-9 {
		t.Errorf("NRM = %v, want %v", r.NRM, wantNRM)
	}
	if math.IsInf(r.PSNR, 1) || r.PSNR <= 0 {
		t.Errorf("PSNR = %v, want finite positive", r.PSNR)
	}
}

func TestEvaluateSizeMismatch(t *testing.T) {
	a := binaryMat(10, 10, func(y, x int) bool { return false })
	defer a.Close()
	b := binaryMat(10, 12, func(y, x int) bool { return false })
	defer b.Close()

	if _, err := Evaluate(a, b); err == nil {
		t.Fatal("Evaluate with mismatched sizes did not fail")
	}
}

func TestMean(t *testing.T) {
	results := []Result{
		{Precision: 1, Recall: 0.5, FMeasure: 2.0 / 3.0, PSNR: 20, NRM: 0.1},
		{Precision: 0.5, Recall: 1, FMeasure: 2.0 / 3.0, PSNR: 30, NRM: 0.3},
	}
	m := Mean(results)
	if math.Abs(m.Precision-0.75) > 1e-9 || math.Abs(m.Recall-0.75) > 1e-9 {
		t.Errorf("mean P/R = %v/%v, want 0.75/0.75", m.Precision, m.Recall)
	}
	if math.Abs(m.PSNR-25) > 1e-9 {
		t.Errorf("mean PSNR = %v, want 25", m.PSNR)
	}
	if math.Abs(m.NRM-0.2) > 1e-9 {
		t.Errorf("mean NRM = %v, want 0.2", m.NRM)
	}
}

func TestMeanEmpty(t *testing.T) {
	if m := Mean(nil); m != (Result{}) {
		t.Errorf("Mean(nil) = %+v, want zero", m)
	}
}
