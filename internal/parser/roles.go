package parser

import (
	"fmt"
	"math"
	"strings"
)

// xNameKeywords mark a column as the spectral axis by name.
var xNameKeywords = []string{
	"wavelength", "wave", "wl", "lambda", "nm",
	"wavenumber", "cm-1", "frequency", "freq", "hz",
}

func namesX(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range xNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// leadingNumbers returns the first n values of column idx, and false if any
// of them is not numeric or there are none.
func leadingNumbers(rows []Row, idx, n int) ([]float64, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]float64, 0, n)
	for _, row := range rows[:n] {
		f, ok := row.At(idx).Float()
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func strictlyMonotonic(vals []float64) bool {
	if len(vals) < 2 {
		return false
	}
	up, down := true, true
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			up = false
		}
		if vals[i] >= vals[i-1] {
			down = false
		}
	}
	return up || down
}

// rangeOf accumulates min/max/count over the numeric cells of the given columns.
func rangeOf(rows []Row, cols []int) *Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, row := range rows {
		for _, c := range cols {
			f, ok := row.At(c).Float()
			if !ok {
				continue
			}
			r.Count++
			r.Min = math.Min(r.Min, f)
			r.Max = math.Max(r.Max, f)
		}
	}
	if r.Count == 0 {
		return nil
	}
	return &r
}

// detectRoles assigns the X column, Y channels and their ranges.
func detectRoles(res *Result, opt Options) {
	if len(res.ColumnNames) == 0 {
		return
	}
	xIdx := -1
	for i, name := range res.ColumnNames {
		if namesX(name) {
			xIdx = i
			res.notef("X column %q detected by name", name)
			break
		}
	}
	if xIdx < 0 && len(res.Rows) >= 3 {
		if vals, ok := leadingNumbers(res.Rows, 0, opt.RoleSample); ok && strictlyMonotonic(vals) {
			xIdx = 0
			res.notef("X column %q detected as a monotonic first column", res.ColumnNames[0])
		}
	}
	if xIdx >= 0 {
		name := res.ColumnNames[xIdx]
		res.XColumn = &name
		res.XRange = rangeOf(res.Rows, []int{xIdx})
		if res.XRange != nil {
			res.notef("X range: %s", formatRange(res.XRange))
		}
	} else {
		res.notef("No X column detected")
	}

	var yIdx []int
	res.YColumns = []string{}
	for i, name := range res.ColumnNames {
		if i == xIdx {
			continue
		}
		if _, ok := leadingNumbers(res.Rows, i, opt.RoleSample); ok {
			yIdx = append(yIdx, i)
			res.YColumns = append(res.YColumns, name)
		}
	}
	if len(yIdx) == 0 {
		res.notef("No numeric Y columns detected")
		return
	}
	res.notef("Y columns: %s", strings.Join(res.YColumns, ", "))
	res.YRange = rangeOf(res.Rows, yIdx)
	if res.YRange != nil {
		res.notef("Y range: %s", formatRange(res.YRange))
	}
}

func formatRange(r *Range) string {
	return fmt.Sprintf("%g to %g (%d values)", r.Min, r.Max, r.Count)
}
