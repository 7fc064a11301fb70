package analysis

import (
	"math"
	"testing"
)

var testSpectrum = []float64{1, 2, 5, 4, 3, 7, 8, 6, 2, 1}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Count != 8 || s.Mean != 5 || !near(s.StdDev, 2, 1e-12) {
		t.Fatalf("stats = %+v", s)
	}
	if s.Min != 2 || s.Max != 9 || s.Range != 7 {
		t.Fatalf("extrema = %+v", s)
	}
	if empty := ComputeStats(nil); empty != (Stats{}) {
		t.Fatalf("empty stats = %+v", empty)
	}
}

func TestNormalizeSpectrum(t *testing.T) {
	n := NormalizeSpectrum(testSpectrum)
	if len(n) != len(testSpectrum) {
		t.Fatalf("len = %d", len(n))
	}
	for i, v := range n {
		if v < 0 || v > 1 {
			t.Fatalf("n[%d] = %v out of [0,1]", i, v)
		}
	}
	if n[0] != 0 || n[6] != 1 {
		t.Fatalf("extrema not mapped: %v", n)
	}
	for _, v := range NormalizeSpectrum([]float64{3, 3, 3}) {
		if v != 0 {
			t.Fatalf("flat series should map to zero, got %v", v)
		}
	}
	if got := NormalizeSpectrum(nil); len(got) != 0 {
		t.Fatalf("empty = %v", got)
	}
}

func TestNormalizeSpectrumIsIdempotent(t *testing.T) {
	cases := []struct {
		name string
		y    []float64
	}{
		{"spectrum", testSpectrum},
		{"negative", []float64{-3, -1, -2, 4, 0.5}},
		{"flat", []float64{7, 7, 7}},
		{"single", []float64{42}},
		{"empty", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			once := NormalizeSpectrum(tc.y)
			twice := NormalizeSpectrum(once)
			if len(twice) != len(once) {
				t.Fatalf("len = %d, want %d", len(twice), len(once))
			}
			for i := range once {
				if !near(twice[i], once[i], 1e-12) {
					t.Fatalf("normalize twice = %v, want %v", twice, once)
				}
			}
		})
	}
}

func TestSmoothSpectrum(t *testing.T) {
	got := SmoothSpectrum([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{1.5, 2, 3, 4, 4.5}
	for i := range want {
		if !near(got[i], want[i], 1e-12) {
			t.Fatalf("smoothed = %v, want %v", got, want)
		}
	}
	for _, w := range []int{0, -1, 11} {
		out := SmoothSpectrum(testSpectrum, w)
		if len(out) != len(testSpectrum) {
			t.Fatalf("w=%d: len %d", w, len(out))
		}
		for i := range out {
			if out[i] != testSpectrum[i] {
				t.Fatalf("w=%d should return the input unchanged: %v", w, out)
			}
		}
		out[0] = 99
		if testSpectrum[0] == 99 {
			t.Fatalf("w=%d: result aliases the input", w)
		}
	}
	if out := SmoothSpectrum(testSpectrum, 5); len(out) != len(testSpectrum) {
		t.Fatalf("len = %d", len(out))
	}
}

func TestComputeFFTMatchesDFT(t *testing.T) {
	inputs := [][]float64{
		{4},
		{1, -1},
		{0.5, 1.5, -2, 3, 7, 1, 0},
		testSpectrum,
		{1, 2, 3, 4, 5, 6, 7, 8, 8, 7, 6, 5, 4, 3, 2, 1},
	}
	for _, in := range inputs {
		got, want := ComputeFFT(in), DFT(in)
		if len(got.Real) != len(in) || len(got.Imag) != len(in) || len(got.Magnitude) != len(in) {
			t.Fatalf("n=%d: lengths %d/%d/%d", len(in), len(got.Real), len(got.Imag), len(got.Magnitude))
		}
		for k := range in {
			if !near(got.Real[k], want.Real[k], 1e-6) || !near(got.Imag[k], want.Imag[k], 1e-6) || !near(got.Magnitude[k], want.Magnitude[k], 1e-6) {
				t.Fatalf("n=%d bin %d: fft (%v,%v) dft (%v,%v)", len(in), k, got.Real[k], got.Imag[k], want.Real[k], want.Imag[k])
			}
		}
	}
	if f := ComputeFFT(testSpectrum); !near(f.Magnitude[0], 39, 1e-9) {
		t.Fatalf("DC bin = %v, want 39", f.Magnitude[0])
	}
	if f := ComputeFFT(nil); len(f.Real) != 0 || len(f.Magnitude) != 0 {
		t.Fatalf("empty fft = %+v", f)
	}
}

func TestCorrectBaseline(t *testing.T) {
	y := make([]float64, 20)
	for i := range y {
		y[i] = 2*float64(i) + 3
	}
	bl := CorrectBaseline(y, 1)
	if !bl.Success || len(bl.CorrectedSpectrum) != len(y) {
		t.Fatalf("baseline = %+v", bl)
	}
	for i, v := range bl.CorrectedSpectrum {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("corrected[%d] = %v, want 0", i, v)
		}
	}

	higher := CorrectBaseline(testSpectrum, 2)
	if !higher.Success || len(higher.CorrectedSpectrum) != len(testSpectrum) || higher.CorrectedSpectrum[2] != 5 {
		t.Fatalf("degree 2 should copy the input: %+v", higher)
	}

	single := CorrectBaseline([]float64{4}, 1)
	if single.Success || single.Error == "" || len(single.CorrectedSpectrum) != 1 || single.CorrectedSpectrum[0] != 4 {
		t.Fatalf("single point baseline = %+v", single)
	}
}

func TestDetectPeaks(t *testing.T) {
	p := DetectPeaks(testSpectrum, PeakOptions{MinDistance: 1})
	if len(p.PeakIndices) != 2 || p.PeakIndices[0] != 2 || p.PeakIndices[1] != 6 {
		t.Fatalf("indices = %v", p.PeakIndices)
	}
	if p.PeakValues[0] != 5 || p.PeakValues[1] != 8 {
		t.Fatalf("values = %v", p.PeakValues)
	}
	if h := DetectPeaks(testSpectrum, PeakOptions{MinHeight: 6}); len(h.PeakIndices) != 1 || h.PeakIndices[0] != 6 {
		t.Fatalf("height filter = %v", h.PeakIndices)
	}
	if d := DetectPeaks(testSpectrum, PeakOptions{MinDistance: 5}); len(d.PeakIndices) != 1 || d.PeakIndices[0] != 2 {
		t.Fatalf("distance filter = %v", d.PeakIndices)
	}
	if flat := DetectPeaks([]float64{1, 3, 3, 1}, PeakOptions{}); len(flat.PeakIndices) != 0 {
		t.Fatalf("plateau should not be a peak: %v", flat.PeakIndices)
	}
	if short := DetectPeaks([]float64{1, 2}, PeakOptions{}); short.PeakIndices == nil || len(short.PeakIndices) != 0 {
		t.Fatalf("short series = %+v", short)
	}
}
