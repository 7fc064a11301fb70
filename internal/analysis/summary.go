package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/brettadin/Anything-SpecApp/internal/parser"
)

// SummaryOptions controls how a parsed dataset is summarized.
type SummaryOptions struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). Counts |z| > OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultSummaryOptions returns reasonable defaults for dataset summaries.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{SampleRows: 5, Outliers: true, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly summary of a parsed dataset.
type Report struct {
	Name     string
	Format   parser.Format
	Rows     int
	Stored   int
	Cols     []ColumnSummary
	Samples  [][]string
	XColumn  string
	YColumns []string
	XRange   *parser.Range
	YRange   *parser.Range
	Metadata map[string]string
	Notes    []string
	Corr     *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|unknown
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Summarize builds a Report over res. total is the row count before any
// downsampling; 0 means len(res.Rows).
func Summarize(name string, res *parser.Result, total int, opt SummaryOptions) *Report {
	rep := &Report{
		Name:     name,
		Format:   res.DetectedFormat,
		Rows:     total,
		Stored:   len(res.Rows),
		XColumn:  res.XName(),
		YColumns: res.YColumns,
		XRange:   res.XRange,
		YRange:   res.YRange,
		Metadata: res.SpectralMetadata,
		Notes:    res.Notes,
	}
	if rep.Rows <= 0 {
		rep.Rows = rep.Stored
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < len(res.Rows) && i < sampleRows; i++ {
		vals := res.Rows[i].Values()
		row := make([]string, len(res.ColumnNames))
		for j := range row {
			if j < len(vals) {
				row[j] = vals[j].String()
			}
		}
		rep.Samples = append(rep.Samples, row)
	}

	// numeric[j][i] holds row i of column j, NaN where the cell is not numeric.
	numeric := make([][]float64, len(res.ColumnNames))
	var numCols []int
	for j, col := range res.ColumnNames {
		s, vals := summarizeColumn(col, j, res.Rows, opt)
		if s.Kind == "numeric" {
			numCols = append(numCols, j)
			numeric[j] = vals
		}
		rep.Cols = append(rep.Cols, s)
	}
	if opt.Correlations && len(numCols) >= 2 {
		rep.Corr = correlations(res.ColumnNames, numCols, numeric)
	}
	return rep
}

func summarizeColumn(name string, j int, rows []parser.Row, opt SummaryOptions) (ColumnSummary, []float64) {
	clean, unit := splitUnits(name)
	s := ColumnSummary{Name: clean, Unit: unit}
	aligned := make([]float64, len(rows))
	var nums []float64
	var dtCnt, txtCnt int
	cats := map[string]int{}
	for i, row := range rows {
		aligned[i] = math.NaN()
		v := row.At(j)
		if x, ok := v.Float(); ok {
			s.NonNull++
			aligned[i] = x
			nums = append(nums, x)
			continue
		}
		text := strings.TrimSpace(v.String())
		if text == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		if _, ok := parseTimeMaybe(text); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(cats) <= 10000 && len(text) <= 64 {
			cats[text]++
		}
		if len(s.ExampleTexts) < 3 {
			s.ExampleTexts = append(s.ExampleTexts, text)
		}
	}

	s.Kind = "unknown"
	switch {
	case len(nums) > 0 && len(nums) >= dtCnt && len(nums) >= txtCnt:
		s.Kind = "numeric"
		s.ExampleTexts = nil
		s.Min, s.Max = floats.Min(nums), floats.Max(nums)
		s.Mean = stat.Mean(nums, nil)
		if len(nums) > 1 {
			s.Std = stat.StdDev(nums, nil)
		}
		if opt.Outliers && len(nums) >= 8 {
			s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(nums, opt.OutlierThreshold)
		}
	case dtCnt > 0 && dtCnt >= txtCnt:
		s.Kind = "datetime"
		s.ExampleTexts = nil
	case len(cats) > 0:
		s.Kind = "categorical"
		s.ExampleTexts = nil
		s.TopValues = topValues(cats, 8)
		s.Unique = len(cats)
	case txtCnt > 0:
		s.Kind = "text"
	}
	return s, aligned
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				count++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return count, maxAbsZ, thr
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// correlations uses pairwise-complete observations for each column pair.
func correlations(names []string, numCols []int, numeric [][]float64) *CorrMatrix {
	n := len(numCols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for a, idx := range numCols {
		m.Columns[a], _ = splitUnits(names[idx])
		m.Values[a] = make([]float64, n)
		m.Values[a][a] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			xs, ys := numeric[numCols[a]], numeric[numCols[b]]
			var px, py []float64
			for i := range xs {
				if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
					continue
				}
				px = append(px, xs[i])
				py = append(py, ys[i])
			}
			var r float64
			if len(px) >= 2 {
				r = stat.Correlation(px, py, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			r = math.Max(-1, math.Min(1, r))
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Format: %s\n", r.Format))
	if r.Stored < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (stored %d)\n", r.Rows, r.Stored))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(": e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}

	if r.XColumn != "" || len(r.YColumns) > 0 {
		b.WriteString("\n[SPECTRAL ROLES]\n")
		if r.XColumn != "" {
			b.WriteString(fmt.Sprintf("- X: %s", safeName(r.XColumn)))
			if r.XRange != nil {
				b.WriteString(fmt.Sprintf(" (%.6g to %.6g, %d values)", r.XRange.Min, r.XRange.Max, r.XRange.Count))
			}
			b.WriteString("\n")
		}
		if len(r.YColumns) > 0 {
			b.WriteString(fmt.Sprintf("- Y: %s", strings.Join(r.YColumns, ", ")))
			if r.YRange != nil {
				b.WriteString(fmt.Sprintf(" (%.6g to %.6g, %d values)", r.YRange.Min, r.YRange.Max, r.YRange.Count))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Metadata) > 0 {
		b.WriteString("\n[METADATA]\n")
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(k), safeVal(r.Metadata[k])))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Notes {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Wavelength (nm)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Wavenumber [cm-1]
	{regexp.MustCompile(`^(.*?)[_\s-]+(nm|um|µm|cm-1|cm\^-1|Hz|kHz|MHz|GHz|eV|ppm|%|°[CF]|au|AU)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
