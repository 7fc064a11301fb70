package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Candidate delimiters in tie-break order.
var candidateDelimiters = []string{",", "\t", ";", "|", " "}

var commentPrefixes = []string{"#", "//", "%", "!"}

// tokenSplitter splits a line on any candidate delimiter, used only to decide
// whether a line looks numeric before a delimiter is known.
var tokenSplitter = regexp.MustCompile(`[\s,;|]+`)

type delimiterChoice struct {
	Delimiter   string
	Mode        int
	Consistency float64
	Score       float64
	Sampled     int
	Fallback    bool
}

// splitLines splits on LF, CRLF or lone CR and keeps empty lines.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

func isCommentLine(line string) bool {
	t := strings.TrimLeft(line, " \t")
	for _, p := range commentPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// isNumericLine reports a line holding a digit and at least two numeric tokens.
func isNumericLine(line string) bool {
	if !hasDigit(line) {
		return false
	}
	n := 0
	for _, tok := range tokenSplitter.Split(line, -1) {
		if tok != "" && isNumber(tok) {
			n++
			if n >= 2 {
				return true
			}
		}
	}
	return false
}

// splitFields splits a line by delim and trims each field. The space
// delimiter splits on runs of whitespace.
func splitFields(line, delim string) []string {
	var parts []string
	if delim == " " {
		parts = strings.Fields(line)
	} else {
		parts = strings.Split(line, delim)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func columnCount(line, delim string) int {
	if delim == " " {
		return len(strings.Fields(line))
	}
	return strings.Count(line, delim) + 1
}

// sampleNumericLines returns up to opt.NumericLines numeric lines taken from
// the first opt.ScanLines non-empty lines, skipping comments.
func sampleNumericLines(lines []string, opt Options) []string {
	var out []string
	scanned := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if scanned >= opt.ScanLines {
			break
		}
		scanned++
		if isCommentLine(line) {
			continue
		}
		if isNumericLine(line) {
			out = append(out, line)
			if len(out) >= opt.NumericLines {
				break
			}
		}
	}
	return out
}

// mode returns the most frequent value and its frequency. Ties go to the
// larger value.
func mode(counts []int) (int, int) {
	freq := map[int]int{}
	best, bestFreq := 0, 0
	for _, c := range counts {
		freq[c]++
	}
	for v, f := range freq {
		if f > bestFreq || (f == bestFreq && v > best) {
			best, bestFreq = v, f
		}
	}
	return best, bestFreq
}

func scoreDelimiter(sample []string, delim string) delimiterChoice {
	counts := make([]int, len(sample))
	for i, line := range sample {
		counts[i] = columnCount(line, delim)
	}
	m, f := mode(counts)
	c := delimiterChoice{Delimiter: delim, Mode: m, Sampled: len(sample)}
	if len(sample) > 0 {
		c.Consistency = float64(f) / float64(len(sample))
	}
	c.Score = float64(m) * c.Consistency
	return c
}

// inferDelimiter picks the candidate whose split gives the most columns
// consistently across numeric lines.
func inferDelimiter(lines []string, opt Options) delimiterChoice {
	sample := sampleNumericLines(lines, opt)
	var best *delimiterChoice
	for _, d := range candidateDelimiters {
		c := scoreDelimiter(sample, d)
		if c.Mode < 2 {
			continue
		}
		if best == nil || c.Score > best.Score {
			cc := c
			best = &cc
		}
	}
	if best != nil {
		return *best
	}
	return firstLineDelimiter(lines)
}

// firstLineDelimiter compares raw split counts on the first non-empty line.
func firstLineDelimiter(lines []string) delimiterChoice {
	first := ""
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	choice := delimiterChoice{Delimiter: ",", Mode: 1, Fallback: true}
	for _, d := range candidateDelimiters {
		if n := columnCount(first, d); n > choice.Mode {
			choice.Delimiter = d
			choice.Mode = n
		}
	}
	return choice
}

func formatForDelimiter(d string) Format {
	switch d {
	case "\t":
		return FormatTSV
	case ";":
		return FormatSemicolon
	case "|":
		return FormatPipe
	case " ":
		return FormatSpace
	default:
		return FormatCSV
	}
}

func delimiterName(d string) string {
	switch d {
	case ",":
		return "comma"
	case "\t":
		return "tab"
	case ";":
		return "semicolon"
	case "|":
		return "pipe"
	case " ":
		return "space"
	default:
		return fmt.Sprintf("%q", d)
	}
}

func (c delimiterChoice) note() string {
	if c.Fallback {
		return fmt.Sprintf("No consistent numeric layout; delimiter %s chosen from the first non-empty line (%d fields)",
			delimiterName(c.Delimiter), c.Mode)
	}
	return fmt.Sprintf("Detected delimiter: %s (%d columns, %.0f%% consistent across %d numeric lines)",
		delimiterName(c.Delimiter), c.Mode, c.Consistency*100, c.Sampled)
}
