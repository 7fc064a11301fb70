package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/brettadin/Anything-SpecApp/internal/parser"
)

// Kind names one analysis in a batch.
type Kind string

const (
	KindStats     Kind = "stats"
	KindNormalize Kind = "normalize"
	KindSmooth    Kind = "smooth"
	KindFFT       Kind = "fft"
	KindPeaks     Kind = "peaks"
	KindBaseline  Kind = "baseline"
	KindAll       Kind = "all"
)

// Options tunes the analyses RunAnalysis performs.
type Options struct {
	SmoothWindow    int
	PeakMinDistance int
	BaselineDegree  int
}

// DefaultOptions returns the window and distances used by the analysis route.
func DefaultOptions() Options {
	return Options{SmoothWindow: 5, PeakMinDistance: 2, BaselineDegree: 1}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SmoothWindow == 0 {
		o.SmoothWindow = d.SmoothWindow
	}
	if o.PeakMinDistance == 0 {
		o.PeakMinDistance = d.PeakMinDistance
	}
	if o.BaselineDegree == 0 {
		o.BaselineDegree = d.BaselineDegree
	}
	return o
}

// Batch collects the results of one analysis request. Only requested
// analyses are populated; a requested analysis is always present in JSON,
// even over an empty series.
type Batch struct {
	YColumn    string    `json:"yColumn,omitempty"`
	XColumn    string    `json:"xColumn,omitempty"`
	X          []float64 `json:"x,omitempty"`
	Stats      *Stats    `json:"stats,omitempty"`
	Normalized []float64 `json:"normalized,omitzero"`
	Smoothed   []float64 `json:"smoothed,omitzero"`
	FFT        *FFT      `json:"fft,omitempty"`
	Peaks      *Peaks    `json:"peaks,omitempty"`
	Baseline   *Baseline `json:"baseline,omitempty"`
}

// ParseKinds splits a comma separated list such as "stats,peaks".
func ParseKinds(s string) []Kind {
	var out []Kind
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, Kind(part))
		}
	}
	return out
}

func wants(kinds []Kind) func(Kind) bool {
	set := map[Kind]bool{}
	for _, k := range kinds {
		set[k] = true
	}
	all := len(set) == 0 || set[KindAll]
	return func(k Kind) bool { return all || set[k] }
}

// RunAnalysis runs the requested analyses over series. Unknown kinds are
// ignored and an empty request runs everything. Peak detection runs on the
// baseline-corrected series with the original mean as minimum height.
func RunAnalysis(series []float64, kinds []Kind, opt Options) *Batch {
	opt = opt.withDefaults()
	want := wants(kinds)
	b := &Batch{}
	if want(KindStats) {
		s := ComputeStats(series)
		b.Stats = &s
	}
	if want(KindNormalize) {
		b.Normalized = NormalizeSpectrum(series)
	}
	if want(KindSmooth) {
		b.Smoothed = SmoothSpectrum(series, opt.SmoothWindow)
	}
	if want(KindFFT) {
		f := ComputeFFT(series)
		b.FFT = &f
	}
	if want(KindPeaks) {
		corrected := CorrectBaseline(series, opt.BaselineDegree).CorrectedSpectrum
		p := DetectPeaks(corrected, PeakOptions{
			MinHeight:   ComputeStats(series).Mean,
			MinDistance: opt.PeakMinDistance,
		})
		b.Peaks = &p
	}
	if want(KindBaseline) {
		bl := CorrectBaseline(series, opt.BaselineDegree)
		b.Baseline = &bl
	}
	return b
}

// ErrNoNumericData is returned when a column holds no numeric values.
var ErrNoNumericData = errors.New("no valid numeric data in specified column")

// ErrColumnNotFound is returned when a requested column does not exist.
var ErrColumnNotFound = errors.New("column not found")

// IndexColumn is the pseudo column used when X falls back to row positions.
const IndexColumn = "index"

// Series is a numeric Y sequence with aligned X positions.
type Series struct {
	YColumn string
	XColumn string
	X       []float64
	Y       []float64
}

// ExtractSeries pulls the numeric values of yColumn out of res. Rows whose
// Y cell is not numeric are skipped. X comes from xColumn, or the detected
// X column when xColumn is empty, and falls back to the row index.
func ExtractSeries(res *parser.Result, yColumn, xColumn string) (*Series, error) {
	yi := res.ColumnIndex(yColumn)
	if yi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, yColumn)
	}
	if xColumn == "" {
		xColumn = res.XName()
	}
	xi := -1
	if xColumn != "" && xColumn != IndexColumn {
		if xi = res.ColumnIndex(xColumn); xi < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, xColumn)
		}
	}
	if xi < 0 {
		xColumn = IndexColumn
	}

	s := &Series{YColumn: yColumn, XColumn: xColumn}
	for i, row := range res.Rows {
		y, ok := row.At(yi).Float()
		if !ok {
			continue
		}
		x := float64(i)
		if xi >= 0 {
			if v, ok := row.At(xi).Float(); ok {
				x = v
			}
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	if len(s.Y) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoNumericData, yColumn)
	}
	return s, nil
}

// Analyze runs RunAnalysis over s and attaches its columns and X positions.
func Analyze(s *Series, kinds []Kind, opt Options) *Batch {
	b := RunAnalysis(s.Y, kinds, opt)
	b.YColumn = s.YColumn
	b.XColumn = s.XColumn
	b.X = s.X
	if b.Peaks != nil {
		b.Peaks.PeakX = make([]float64, len(b.Peaks.PeakIndices))
		for i, idx := range b.Peaks.PeakIndices {
			b.Peaks.PeakX[i] = s.X[idx]
		}
	}
	return b
}

// Markdown renders a compact, human readable view of the batch.
func (b *Batch) Markdown() string {
	var sb strings.Builder
	sb.WriteString("[ANALYSIS]\n")
	if b.YColumn != "" {
		sb.WriteString(fmt.Sprintf("Y column: %s\n", safeName(b.YColumn)))
	}
	if b.XColumn != "" {
		sb.WriteString(fmt.Sprintf("X column: %s\n", safeName(b.XColumn)))
	}
	if s := b.Stats; s != nil {
		sb.WriteString("\n[STATS]\n")
		sb.WriteString(fmt.Sprintf("- count %d, mean %.4g, std %.4g\n", s.Count, s.Mean, s.StdDev))
		sb.WriteString(fmt.Sprintf("- min %.4g, max %.4g, range %.4g\n", s.Min, s.Max, s.Range))
	}
	if p := b.Peaks; p != nil {
		sb.WriteString("\n[PEAKS]\n")
		if len(p.PeakIndices) == 0 {
			sb.WriteString("- none above threshold\n")
		}
		for i, idx := range p.PeakIndices {
			if i < len(p.PeakX) {
				sb.WriteString(fmt.Sprintf("- #%d at %s=%.6g: %.4g\n", idx, safeName(b.XColumn), p.PeakX[i], p.PeakValues[i]))
				continue
			}
			sb.WriteString(fmt.Sprintf("- #%d: %.4g\n", idx, p.PeakValues[i]))
		}
	}
	if bl := b.Baseline; bl != nil {
		sb.WriteString("\n[BASELINE]\n")
		if bl.Success {
			sb.WriteString(fmt.Sprintf("- corrected %d points\n", len(bl.CorrectedSpectrum)))
		} else {
			sb.WriteString(fmt.Sprintf("- failed: %s\n", bl.Error))
		}
	}
	if f := b.FFT; f != nil {
		sb.WriteString("\n[FFT]\n")
		sb.WriteString(fmt.Sprintf("- %d bins\n", len(f.Magnitude)))
		for _, k := range dominantBins(f.Magnitude, 5) {
			sb.WriteString(fmt.Sprintf("- bin %d: magnitude %.4g\n", k, f.Magnitude[k]))
		}
	}
	if b.Smoothed != nil {
		sb.WriteString(fmt.Sprintf("\n[SMOOTHED]\n- %d points\n", len(b.Smoothed)))
	}
	if b.Normalized != nil {
		sb.WriteString(fmt.Sprintf("\n[NORMALIZED]\n- %d points in [0,1]\n", len(b.Normalized)))
	}
	return sb.String()
}

// dominantBins returns up to n non-DC bins from the first half of the
// spectrum, strongest first.
func dominantBins(mag []float64, n int) []int {
	var idx []int
	for k := 1; k <= len(mag)/2; k++ {
		idx = append(idx, k)
	}
	sort.SliceStable(idx, func(i, j int) bool { return mag[idx[i]] > mag[idx[j]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
