package parser

import (
	"strings"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

type delimitedHandler struct{}

func (delimitedHandler) Name() string { return "delimited" }

func (delimitedHandler) CanParse(string, []byte) bool { return true }

func (delimitedHandler) Parse(content []byte, _ string, res *Result, opt Options) error {
	parseDelimited(string(content), res, opt)
	return nil
}

// parseDelimited runs the full text pipeline: delimiter inference, boundary
// scan, header detection, row materialization and role detection.
func parseDelimited(content string, res *Result, opt Options) {
	log := opt.Logger.WithFields(logging.Fields{"stage": "delimited"})
	if strings.TrimSpace(content) == "" {
		res.DetectedFormat = FormatEmpty
		res.notef("File is empty")
		return
	}
	lines := splitLines(content)
	choice := inferDelimiter(lines, opt)
	log.Debug("delimiter chosen", logging.Fields{
		"delimiter": delimiterName(choice.Delimiter), "mode": choice.Mode,
		"score": choice.Score, "fallback": choice.Fallback,
	})
	res.notef("%s", choice.note())
	d := choice.Delimiter
	res.Delimiter = &d
	res.DetectedFormat = formatForDelimiter(d)
	parseLines(lines, d, res, opt)
}

// parseLines runs everything after delimiter inference on pre-split lines.
func parseLines(lines []string, delim string, res *Result, opt Options) {
	log := opt.Logger.WithFields(logging.Fields{"stage": "boundary"})
	b := scanBoundary(lines, delim, opt)
	for _, m := range b.Metadata {
		res.MetadataRows = append(res.MetadataRows, m)
		if m.Key != "" {
			res.SpectralMetadata[m.Key] = m.Value
		}
	}
	if len(b.Metadata) > 0 {
		res.notef("Skipped %d metadata lines before the data (%d key-value)",
			len(b.Metadata), b.Counts[LineKeyValue])
	}
	if b.Start < 0 {
		res.DetectedFormat = FormatEmpty
		res.DataStartRow = len(lines)
		res.notef("No data rows found in %d lines", len(lines))
		log.Debug("no data line found", logging.Fields{"lines": len(lines)})
		return
	}
	res.DataStartRow = b.Start
	log.Debug("data starts", logging.Fields{"line": b.Start})

	first := splitFields(strings.TrimSpace(lines[b.Start]), delim)
	var second []string
	for i := b.Start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" || isCommentLine(lines[i]) {
			continue
		}
		second = splitFields(strings.TrimSpace(lines[i]), delim)
		break
	}
	hasHeader, reason := detectHeader(first, second)
	res.HasHeaders = hasHeader
	from := b.Start
	if hasHeader {
		names, renamed := headerNames(first)
		res.ColumnNames = names
		res.notef("Header row detected at line %d: %s", b.Start+1, reason)
		if renamed > 0 {
			res.notef("Renamed %d blank or duplicate column names", renamed)
		}
		from = b.Start + 1
	} else {
		res.ColumnNames = syntheticNames(len(first))
		res.notef("No header row; generated %d column names", len(first))
	}

	m := materializeRows(lines, from, delim, res.ColumnNames)
	res.Rows = m.Rows
	if res.Rows == nil {
		res.Rows = []Row{}
	}
	if m.SkippedComments > 0 {
		res.notef("Skipped %d comment lines inside the data block", m.SkippedComments)
	}
	if m.Padded > 0 {
		res.notef("%d rows had missing trailing cells (filled with empty values)", m.Padded)
	}
	if m.Truncated > 0 {
		res.notef("%d rows had more cells than columns (extra cells dropped)", m.Truncated)
	}
	res.notef("Parsed %d data rows with %d columns", len(res.Rows), len(res.ColumnNames))
	detectRoles(res, opt)
}
