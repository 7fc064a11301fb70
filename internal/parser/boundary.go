package parser

import (
	"regexp"
	"strings"
)

// LineKind tags a line seen before the first data row.
type LineKind string

const (
	LineBlank    LineKind = "blank"
	LineComment  LineKind = "comment"
	LineMarker   LineKind = "marker"
	LineKeyValue LineKind = "key-value"
	LineText     LineKind = "text"
	LineData     LineKind = "data"
	LineOther    LineKind = "other"
)

var (
	keyValuePattern = regexp.MustCompile(`^([^:]+):(.*)$`)
	letterRun       = regexp.MustCompile(`\p{L}{2}`)
)

// lineClass is the classification of a single line.
type lineClass struct {
	Kind   LineKind
	Key    string
	Value  string
	Tokens []string
}

// tokensOf splits a line by delim and drops empty tokens.
func tokensOf(line, delim string) []string {
	parts := splitFields(line, delim)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func numericRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	n := 0
	for _, t := range tokens {
		if isNumber(t) {
			n++
		}
	}
	return float64(n) / float64(len(tokens))
}

func hasLetterRun(tokens []string) bool {
	for _, t := range tokens {
		if letterRun.MatchString(t) {
			return true
		}
	}
	return false
}

func isMarkerLine(s string) bool {
	return strings.Contains(s, ">>>>>") || strings.Contains(s, "<<<<<") ||
		strings.Contains(strings.ToLower(s), "begin")
}

// classifyLine tags one line. next is the following non-blank, non-comment
// line; it lets a textual line directly above numeric rows of the same field
// count read as a header row rather than metadata. Empty cells count toward
// the width.
func classifyLine(line, next, delim string, ratio float64) lineClass {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return lineClass{Kind: LineBlank}
	case isMarkerLine(t):
		return lineClass{Kind: LineMarker}
	case isCommentLine(t):
		return lineClass{Kind: LineComment}
	}
	if m := keyValuePattern.FindStringSubmatch(t); m != nil {
		if key := strings.TrimSpace(m[1]); key != "" {
			return lineClass{Kind: LineKeyValue, Key: key, Value: strings.TrimSpace(m[2])}
		}
	}
	tokens := tokensOf(t, delim)
	if len(tokens) < 2 {
		return lineClass{Kind: LineOther, Tokens: tokens}
	}
	if numericRatio(tokens) < ratio && hasLetterRun(tokens) {
		if next != "" {
			next = strings.TrimSpace(next)
			width := len(splitFields(t, delim))
			if len(splitFields(next, delim)) == width && numericRatio(tokensOf(next, delim)) >= ratio {
				return lineClass{Kind: LineData, Tokens: tokens}
			}
		}
		c := lineClass{Kind: LineText, Tokens: tokens}
		if len(tokens) == 2 {
			c.Key, c.Value = tokens[0], tokens[1]
		}
		return c
	}
	return lineClass{Kind: LineData, Tokens: tokens}
}

// boundary is the outcome of scanning for the first data line.
type boundary struct {
	// Start is the index of the first data line, or -1.
	Start    int
	Metadata []MetadataRow
	Counts   map[LineKind]int
}

// nextContentLine returns the first line after i that is neither blank nor a
// comment, matching how the header detector picks its comparison row.
func nextContentLine(lines []string, i int) string {
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" && !isCommentLine(lines[j]) {
			return lines[j]
		}
	}
	return ""
}

// scanBoundary walks lines top-down until the first data line, collecting
// everything above it as metadata.
func scanBoundary(lines []string, delim string, opt Options) boundary {
	b := boundary{Start: -1, Counts: map[LineKind]int{}}
	for i, line := range lines {
		c := classifyLine(line, nextContentLine(lines, i), delim, opt.MetadataRatio)
		b.Counts[c.Kind]++
		switch c.Kind {
		case LineBlank:
			continue
		case LineData:
			b.Start = i
			return b
		}
		b.Metadata = append(b.Metadata, MetadataRow{
			Line:    i,
			Content: strings.TrimSpace(line),
			Kind:    c.Kind,
			Key:     c.Key,
			Value:   c.Value,
		})
	}
	return b
}
