package analysis

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTImpulse(t *testing.T) {
	data := make([]float64, 8)
	data[0] = 1

	result := FFT(data)
	for i, v := range result {
		if math.Abs(cmplx.Abs(v)-1) > 1e-12 {
			t.Errorf("bin %d: expected magnitude 1, got %f", i, cmplx.Abs(v))
		}
	}
}

func TestFFTConstant(t *testing.T) {
	data := []float64{2, 2, 2, 2}

	result := FFT(data)
	if math.Abs(real(result[0])-8) > 1e-12 {
		t.Errorf("expected DC bin 8, got %f", real(result[0]))
	}
	for i := 1; i < len(result); i++ {
		if cmplx.Abs(result[i]) > 1e-12 {
			t.Errorf("bin %d: expected zero, got %f", i, cmplx.Abs(result[i]))
		}
	}
}

func TestPadToPowerOfTwo(t *testing.T) {
	padded := PadToPowerOfTwo(make([]float64, 100))
	if len(padded) != 128 {
		t.Errorf("expected length 128, got %d", len(padded))
	}

	exact := make([]float64, 64)
	if len(PadToPowerOfTwo(exact)) != 64 {
		t.Error("power-of-two input should not grow")
	}
}

func TestPowerSpectrumPeak(t *testing.T) {
	n := 256
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(n))
	}

	ps := PowerSpectrum(data)
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 8 {
		t.Errorf("expected peak at bin 8, got %d", peak)
	}
}

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	n := 512
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 5 * float64(i) * dt)
	}

	f := DominantFrequency(data, dt)
	if math.Abs(f-5) > 0.3 {
		t.Errorf("expected dominant frequency near 5 Hz, got %f", f)
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	if f := DominantFrequency(nil, 0.01); f != 0 {
		t.Errorf("expected 0 for empty series, got %f", f)
	}
	if f := DominantFrequency([]float64{1, 2, 3}, 0); f != 0 {
		t.Errorf("expected 0 for zero dt, got %f", f)
	}
}
