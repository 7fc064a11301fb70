package parser

import "strings"

type materialized struct {
	Rows            []Row
	SkippedComments int
	Padded          int
	Truncated       int
}

// materializeRows turns every non-empty line from index `from` on into a row
// aligned with columns.
func materializeRows(lines []string, from int, delim string, columns []string) materialized {
	var m materialized
	for i := from; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isCommentLine(line) {
			m.SkippedComments++
			continue
		}
		fields := splitFields(line, delim)
		switch {
		case len(fields) < len(columns):
			m.Padded++
		case len(fields) > len(columns):
			m.Truncated++
		}
		vals := make([]Value, 0, len(columns))
		for j := 0; j < len(fields) && j < len(columns); j++ {
			vals = append(vals, ParseValue(fields[j]))
		}
		m.Rows = append(m.Rows, NewRow(columns, vals))
	}
	return m
}
