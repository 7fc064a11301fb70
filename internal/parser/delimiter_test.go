package parser

import "testing"

func TestInferDelimiter(t *testing.T) {
	opt := DefaultOptions()
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"comma", "a,b\n1,2\n3,4\n", ","},
		{"tab beats space on tie", "x\ty\n1\t2\n3\t4\n", "\t"},
		{"semicolon", "1;2;3\n4;5;6\n", ";"},
		{"pipe", "1|2\n3|4\n", "|"},
		{"space runs", "1   2   3\n4 5 6\n", " "},
		{"comments skipped", "# 1,2,3,4,5\n1;2\n3;4\n", ";"},
		{"first line fallback", "alpha|beta|gamma\n", "|"},
		{"nothing splits", "alpha\n", ","},
	}
	for _, tc := range cases {
		got := inferDelimiter(splitLines(tc.content), opt)
		if got.Delimiter != tc.want {
			t.Fatalf("%s: delimiter = %q, want %q", tc.name, got.Delimiter, tc.want)
		}
	}
}

func TestInferDelimiterScoresConsistency(t *testing.T) {
	// comma splits into 2 or 3 fields; semicolon gives 3 every time
	content := "1,5;2;3\n4;5,5;6\n7;8;9,1,2\n"
	got := inferDelimiter(splitLines(content), DefaultOptions())
	if got.Delimiter != ";" || got.Mode != 3 || got.Consistency != 1 {
		t.Fatalf("choice = %+v, want semicolon mode 3", got)
	}
}

func TestNumericLine(t *testing.T) {
	cases := map[string]bool{
		"400,0.5":          true,
		"1e-3 2E4":         true,
		"Date: 2025-01-01": false,
		"wavelength,1":     false,
		"":                 false,
	}
	for in, want := range cases {
		if got := isNumericLine(in); got != want {
			t.Fatalf("isNumericLine(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSplitLinesHandlesLineEndings(t *testing.T) {
	got := splitLines("a\r\nb\rc\n\nd")
	want := []string{"a", "b", "c", "", "d"}
	if len(got) != len(want) {
		t.Fatalf("splitLines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitLines[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
