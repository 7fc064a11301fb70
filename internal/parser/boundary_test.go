package parser

import "testing"

func TestClassifyLine(t *testing.T) {
	cases := []struct {
		line, next string
		want       LineKind
	}{
		{"   ", "", LineBlank},
		{">>>>>Begin Spectral Data<<<<<", "", LineMarker},
		{"BEGIN DATA", "", LineMarker},
		{"# exported by tool", "", LineComment},
		{"// note", "", LineComment},
		{"Integration Time (sec): 0.1", "", LineKeyValue},
		{"Sample Name,Control", "", LineText},
		{"wavelength,intensity,extra", "400,1", LineText},
		{"wavelength,intensity", "400,1", LineData},
		{"wavelength,intensity,flag", "400,10,", LineData},
		{"400,0.5", "", LineData},
		{"x,y", "", LineData},
		{"lonely", "", LineOther},
	}
	for _, tc := range cases {
		got := classifyLine(tc.line, tc.next, ",", DefaultMetadataRatio)
		if got.Kind != tc.want {
			t.Fatalf("classifyLine(%q) = %s, want %s", tc.line, got.Kind, tc.want)
		}
	}
}

func TestClassifyLineKeyValues(t *testing.T) {
	kv := classifyLine("Integration Time (sec): 0.1", "", ",", DefaultMetadataRatio)
	if kv.Key != "Integration Time (sec)" || kv.Value != "0.1" {
		t.Fatalf("key-value = %q/%q", kv.Key, kv.Value)
	}
	text := classifyLine("Operator,Jane", "", ",", DefaultMetadataRatio)
	if text.Kind != LineText || text.Key != "Operator" || text.Value != "Jane" {
		t.Fatalf("two-token text = %+v", text)
	}
}

func TestScanBoundaryLastDuplicateWins(t *testing.T) {
	lines := splitLines("Mode: A\nMode: B\n1,2\n3,4\n")
	b := scanBoundary(lines, ",", DefaultOptions())
	if b.Start != 2 {
		t.Fatalf("start = %d, want 2", b.Start)
	}
	res := newResult(FormatCSV)
	parseLines(lines, ",", res, DefaultOptions().withDefaults())
	if res.SpectralMetadata["Mode"] != "B" {
		t.Fatalf("Mode = %q, want B", res.SpectralMetadata["Mode"])
	}
}

func TestScanBoundaryNoData(t *testing.T) {
	lines := splitLines("# a\nTitle: x\n")
	b := scanBoundary(lines, ",", DefaultOptions())
	if b.Start != -1 || len(b.Metadata) != 2 {
		t.Fatalf("boundary = %+v", b)
	}
}

func TestScanBoundaryLookaheadSkipsComments(t *testing.T) {
	lines := splitLines("wavelength,intensity\n# nm,counts\n400,10\n410,20\n")
	b := scanBoundary(lines, ",", DefaultOptions().withDefaults())
	if b.Start != 0 || len(b.Metadata) != 0 {
		t.Fatalf("boundary = %+v, want header at line 0", b)
	}
}
