package parser

import (
	"strings"
	"testing"
)

func resultWithRows(n int) *Result {
	res := newResult(FormatCSV)
	res.ColumnNames = []string{"i"}
	for i := 0; i < n; i++ {
		res.Rows = append(res.Rows, NewRow(res.ColumnNames, []Value{Number(float64(i))}))
	}
	return res
}

func TestDownsampleKeepsEveryStrideRow(t *testing.T) {
	res := resultWithRows(4500)
	s := res.Downsample(DefaultMaxStoragePoints, DefaultPreviewRows)
	if s.Stride != 3 || len(s.Rows) != 1500 || s.OriginalCount != 4500 {
		t.Fatalf("stride=%d rows=%d original=%d", s.Stride, len(s.Rows), s.OriginalCount)
	}
	if f, _ := s.Rows[1].At(0).Float(); f != 3 {
		t.Fatalf("second kept row = %v, want index 3", f)
	}
	if len(s.Preview) != DefaultPreviewRows {
		t.Fatalf("preview = %d rows", len(s.Preview))
	}
	last := res.Notes[len(res.Notes)-1]
	if !strings.Contains(last, "from 4500 to 1500 points") || !strings.Contains(last, "every 3rd point") {
		t.Fatalf("note = %q", last)
	}
	if !s.Downsampled() {
		t.Fatalf("expected Downsampled() to be true")
	}
}

func TestDownsampleBelowCap(t *testing.T) {
	res := resultWithRows(2000)
	s := res.Downsample(DefaultMaxStoragePoints, DefaultPreviewRows)
	if s.Stride != 1 || len(s.Rows) != 2000 || len(res.Notes) != 0 {
		t.Fatalf("stride=%d rows=%d notes=%v", s.Stride, len(s.Rows), res.Notes)
	}
	small := resultWithRows(5)
	if p := small.Downsample(DefaultMaxStoragePoints, DefaultPreviewRows).Preview; len(p) != 5 {
		t.Fatalf("preview = %d rows, want 5", len(p))
	}
}

func TestDownsampleLengthBound(t *testing.T) {
	for _, n := range []int{2001, 3999, 4000, 4001, 10007} {
		s := resultWithRows(n).Downsample(DefaultMaxStoragePoints, 0)
		if len(s.Rows) > DefaultMaxStoragePoints {
			t.Fatalf("n=%d: kept %d rows", n, len(s.Rows))
		}
		want := (n + s.Stride - 1) / s.Stride
		if len(s.Rows) != want {
			t.Fatalf("n=%d: kept %d rows, want %d", n, len(s.Rows), want)
		}
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Fatalf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
