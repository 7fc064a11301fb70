package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a series. StdDev is the population standard deviation.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
}

// FFT holds the discrete Fourier transform of a series, one bin per sample.
type FFT struct {
	Real      []float64 `json:"real"`
	Imag      []float64 `json:"imag"`
	Magnitude []float64 `json:"magnitude"`
}

// Peaks lists accepted local maxima as parallel index/value sequences.
type Peaks struct {
	PeakIndices []int     `json:"peakIndices"`
	PeakValues  []float64 `json:"peakValues"`
	// PeakX maps each peak to its X position when the series has one.
	PeakX []float64 `json:"peakX,omitempty"`
}

// Baseline is the outcome of a baseline correction.
type Baseline struct {
	CorrectedSpectrum []float64 `json:"correctedSpectrum"`
	Success           bool      `json:"success"`
	Error             string    `json:"error,omitempty"`
}

// PeakOptions controls DetectPeaks.
type PeakOptions struct {
	MinHeight   float64
	MinDistance int
}

// ComputeStats returns count, mean, population standard deviation and the
// extrema of y. An empty series yields all zeros.
func ComputeStats(y []float64) Stats {
	if len(y) == 0 {
		return Stats{}
	}
	lo, hi := floats.Min(y), floats.Max(y)
	return Stats{
		Count:  len(y),
		Mean:   stat.Mean(y, nil),
		StdDev: math.Sqrt(stat.PopVariance(y, nil)),
		Min:    lo,
		Max:    hi,
		Range:  hi - lo,
	}
}

// NormalizeSpectrum rescales y into [0,1]. A flat series maps to zeros.
func NormalizeSpectrum(y []float64) []float64 {
	out := make([]float64, len(y))
	if len(y) == 0 {
		return out
	}
	lo, hi := floats.Min(y), floats.Max(y)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i, v := range y {
		out[i] = (v - lo) / span
	}
	return out
}

// SmoothSpectrum applies a centered moving average whose window is clipped
// at the edges. Windows below 1 or wider than the series return a copy.
func SmoothSpectrum(y []float64, window int) []float64 {
	out := make([]float64, len(y))
	if window < 1 || window > len(y) {
		copy(out, y)
		return out
	}
	half := window / 2
	for i := range y {
		lo := max(0, i-half)
		hi := min(len(y)-1, i+half)
		out[i] = floats.Sum(y[lo:hi+1]) / float64(hi-lo+1)
	}
	return out
}

// ComputeFFT returns the full-length DFT of y using the exponent sign
// convention X[k] = Σ y[n]·e^(−2πikn/N).
func ComputeFFT(y []float64) FFT {
	res := FFT{
		Real:      make([]float64, len(y)),
		Imag:      make([]float64, len(y)),
		Magnitude: make([]float64, len(y)),
	}
	if len(y) == 0 {
		return res
	}
	for k, c := range fft.FFTReal(y) {
		res.Real[k] = real(c)
		res.Imag[k] = imag(c)
		res.Magnitude[k] = cmplx.Abs(c)
	}
	return res
}

// DFT is the direct O(n²) transform. ComputeFFT matches it up to rounding.
func DFT(y []float64) FFT {
	n := len(y)
	res := FFT{
		Real:      make([]float64, n),
		Imag:      make([]float64, n),
		Magnitude: make([]float64, n),
	}
	for k := 0; k < n; k++ {
		var re, im float64
		for j, v := range y {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			re += v * math.Cos(angle)
			im += v * math.Sin(angle)
		}
		res.Real[k] = re
		res.Imag[k] = im
		res.Magnitude[k] = math.Hypot(re, im)
	}
	return res
}

var errTooFewPoints = errors.New("baseline needs at least two points")

// CorrectBaseline subtracts a least-squares line fitted over the sample
// index. Only degree 1 is fitted; other degrees return an unmodified copy.
// On failure the original series is returned with Success false.
func CorrectBaseline(y []float64, degree int) Baseline {
	if degree != 1 {
		out := make([]float64, len(y))
		copy(out, y)
		return Baseline{CorrectedSpectrum: out, Success: true}
	}
	if len(y) < 2 {
		return Baseline{CorrectedSpectrum: y, Error: errTooFewPoints.Error()}
	}
	xs := make([]float64, len(y))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, y, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return Baseline{CorrectedSpectrum: y, Error: "baseline fit is not finite"}
	}
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v - (slope*float64(i) + intercept)
	}
	return Baseline{CorrectedSpectrum: out, Success: true}
}

// DetectPeaks returns strict local maxima at or above MinHeight. Scanning
// left to right, a candidate is kept only if it lies at least MinDistance
// samples past the last kept peak.
func DetectPeaks(y []float64, opt PeakOptions) Peaks {
	p := Peaks{PeakIndices: []int{}, PeakValues: []float64{}}
	for i := 1; i < len(y)-1; i++ {
		if y[i] <= y[i-1] || y[i] <= y[i+1] || y[i] < opt.MinHeight {
			continue
		}
		if n := len(p.PeakIndices); n > 0 && i-p.PeakIndices[n-1] < opt.MinDistance {
			continue
		}
		p.PeakIndices = append(p.PeakIndices, i)
		p.PeakValues = append(p.PeakValues, y[i])
	}
	return p
}
