package parser

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		row := r
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestXLSXFirstSheet(t *testing.T) {
	data := workbook(t, [][]any{
		{"Instrument: UV-1800"},
		{"wavelength", "absorbance"},
		{200, 0.5},
		{210, 0.7},
		{220, 0.6},
	})
	res := ClassifyAndParse(data, "uv.xlsx", DefaultOptions())
	if res.DetectedFormat != FormatXLSX {
		t.Fatalf("format = %q, notes %v", res.DetectedFormat, res.Notes)
	}
	if res.SpectralMetadata["Instrument"] != "UV-1800" {
		t.Fatalf("metadata = %v", res.SpectralMetadata)
	}
	if len(res.Rows) != 3 || res.XName() != "wavelength" {
		t.Fatalf("rows=%d x=%q", len(res.Rows), res.XName())
	}
	if len(res.YColumns) != 1 || res.YColumns[0] != "absorbance" {
		t.Fatalf("yColumns = %v", res.YColumns)
	}
}

func TestXLSXBrokenWorkbook(t *testing.T) {
	res := ClassifyAndParse([]byte("definitely not a zip"), "bad.xlsx", DefaultOptions())
	if res.DetectedFormat != FormatUnknown || len(res.Rows) != 0 {
		t.Fatalf("format=%q rows=%d", res.DetectedFormat, len(res.Rows))
	}
	found := false
	for _, n := range res.Notes {
		if strings.Contains(n, "XLSX parsing failed") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected failure note, got %v", res.Notes)
	}
}
