package parser

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxHandler struct{}

func (xlsxHandler) Name() string { return "xlsx" }

func (xlsxHandler) CanParse(ext string, _ []byte) bool { return ext == "xlsx" || ext == "xlsm" }

// Parse reads the first worksheet that has any cells and runs its rows through
// the same boundary, header and role detection as delimited text.
func (xlsxHandler) Parse(content []byte, _ string, res *Result, opt Options) error {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return &ParseFailure{Handler: "xlsx", Reason: "cannot open workbook", Err: err, Fallback: FormatUnknown}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return &ParseFailure{Handler: "xlsx", Reason: "cannot read sheet " + sheet, Err: err, Fallback: FormatUnknown}
		}
		if !hasCells(rows) {
			continue
		}
		lines := make([]string, len(rows))
		for r, cells := range rows {
			clean := make([]string, len(cells))
			for c, cell := range cells {
				clean[c] = strings.Join(strings.Fields(cell), " ")
			}
			lines[r] = strings.Join(clean, "\t")
		}
		res.DetectedFormat = FormatXLSX
		res.notef("Read sheet %q (%d of %d, %d rows)", sheet, i+1, len(sheets), len(rows))
		parseLines(lines, "\t", res, opt)
		return nil
	}
	res.DetectedFormat = FormatEmpty
	res.notef("Workbook has no cells in any of its %d sheets", len(sheets))
	return nil
}

func hasCells(rows [][]string) bool {
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				return true
			}
		}
	}
	return false
}
