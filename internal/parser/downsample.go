package parser

import "fmt"

// Sample is the storage-ready view of a Result.
type Sample struct {
	Rows          []Row
	Preview       []Row
	Stride        int
	OriginalCount int
}

// Downsampled reports whether rows were dropped.
func (s Sample) Downsampled() bool { return s.Stride > 1 }

// Downsample keeps every stride-th row so at most maxPoints rows remain, and
// takes the first previewRows rows as a preview. When rows are dropped a note
// is appended to r.Notes.
func (r *Result) Downsample(maxPoints, previewRows int) Sample {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxStoragePoints
	}
	if previewRows < 0 {
		previewRows = DefaultPreviewRows
	}
	n := len(r.Rows)
	s := Sample{Rows: r.Rows, Stride: 1, OriginalCount: n}
	if n > maxPoints {
		s.Stride = (n + maxPoints - 1) / maxPoints
		kept := make([]Row, 0, (n+s.Stride-1)/s.Stride)
		for i := 0; i < n; i += s.Stride {
			kept = append(kept, r.Rows[i])
		}
		s.Rows = kept
		r.notef("Dataset downsampled from %d to %d points for storage/visualization (every %s point). Full data available in download.",
			n, len(kept), ordinal(s.Stride))
	}
	if previewRows > n {
		previewRows = n
	}
	s.Preview = r.Rows[:previewRows]
	return s
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
