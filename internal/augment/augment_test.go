package augment

import (
	"math"
	"math/rand"
	"testing"

	"gocv.io/x/gocv"
)

func constantMat(rows, cols int, value uint8) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetUCharAt(y, x, value)
		}
	}
	return m
}

func TestGaussianNoiseZeroSigmaIsIdentity(t *testing.T) {
	img := constantMat(32, 32, 100)
	defer img.Close()

	out := GaussianNoise(img, 0, 0, rand.New(rand.NewSource(1)))
	defer out.Close()

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if got := out.GetUCharAt(y, x); got != 100 {
				t.Fatalf("pixel (%d, %d) = %d, want 100", x, y, got)
			}
		}
	}
}

func TestGaussianNoiseClampsAndCentres(t *testing.T) {
	img := constantMat(64, 64, 128)
	defer img.Close()

	out := GaussianNoise(img, 0, 10, rand.New(rand.NewSource(7)))
	defer out.Close()

	var sum float64
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			sum += float64(out.GetUCharAt(y, x))
		}
	}
	mean := sum / (64 * 64)
	if math.Abs(mean-128) > 2 {
		t.Errorf("noisy mean = %.2f, want ~128", mean)
	}
}

func TestGaussianNoiseDeterministicForSeed(t *testing.T) {
	img := constantMat(16, 16, 50)
	defer img.Close()

	a := GaussianNoise(img, 0, 10, rand.New(rand.NewSource(42)))
	defer a.Close()
	b := GaussianNoise(img, 0, 10, rand.New(rand.NewSource(42)))
	defer b.Close()

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if a.GetUCharAt(y, x) != b.GetUCharAt(y, x) {
				t.Fatalf("same seed produced different noise at (%d, %d)", x, y)
			}
		}
	}
}

func TestSaltPepperNoiseBounds(t *testing.T) {
	img := constantMat(50, 50, 128)
	defer img.Close()

	out := SaltPepperNoise(img, 10, rand.New(rand.NewSource(3)))
	defer out.Close()

	changed := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			got := out.GetUCharAt(y, x)
			switch got {
			case 128:
			case 0, 255:
				changed++
			default:
				t.Fatalf("pixel (%d, %d) = %d, want 0, 128 or 255", x, y, got)
			}
		}
	}
	// 10% of 2500 pixels, minus collisions and pepper-over-salt.
	if changed == 0 || changed > 250 {
		t.Errorf("changed %d pixels, want in (0, 250]", changed)
	}
}

func TestNormalizePair(t *testing.T) {
	in := constantMat(8, 8, 51)
	defer in.Close()
	gt := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC1)
	defer gt.Close()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			// Anti-aliased label values on both sides of the midpoint.
			if x < 4 {
				gt.SetUCharAt(y, x, 30)
			} else {
				gt.SetUCharAt(y, x, 200)
			}
		}
	}

	inNorm, gtNorm := NormalizePair(in, gt)
	defer inNorm.Close()
	defer gtNorm.Close()

	if got := float64(inNorm.GetFloatAt(0, 0)); math.Abs(got-51.0/255) > 1e-6 {
		t.Errorf("input norm = %v, want %v", got, 51.0/255)
	}
	if got := gtNorm.GetFloatAt(0, 0); got != 0 {
		t.Errorf("dark label = %v, want 0", got)
	}
	if got := gtNorm.GetFloatAt(0, 7); got != 1 {
		t.Errorf("light label = %v, want 1", got)
	}
}
