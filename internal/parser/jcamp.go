package parser

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

var jcampExtensions = map[string]bool{"jdx": true, "jcamp": true, "dx": true}

type jcampHandler struct{}

func (jcampHandler) Name() string { return "jcamp" }

func (jcampHandler) CanParse(ext string, content []byte) bool {
	return jcampExtensions[ext] || bytes.Contains(content, []byte("##TITLE")) ||
		bytes.Contains(content, []byte("##JCAMP"))
}

func (jcampHandler) Parse(content []byte, _ string, res *Result, opt Options) error {
	sp, err := parseJCAMP(string(content))
	if err != nil {
		return err
	}
	log := opt.Logger.WithFields(logging.Fields{"stage": "jcamp"})
	log.Debug("jcamp block parsed", logging.Fields{"form": sp.Form, "points": len(sp.X)})

	res.DetectedFormat = FormatJCAMP
	res.ColumnNames = []string{"x", "y"}
	res.Rows = make([]Row, len(sp.X))
	for i := range sp.X {
		res.Rows[i] = NewRow(res.ColumnNames, []Value{Number(sp.X[i]), Number(sp.Y[i])})
	}
	for _, l := range sp.LDRs {
		res.SpectralMetadata[l.Label] = l.Value
		res.MetadataRows = append(res.MetadataRows, MetadataRow{
			Line:    l.Line,
			Content: "##" + l.Label + "=" + l.Value,
			Kind:    LineKeyValue,
			Key:     l.Label,
			Value:   l.Value,
		})
	}
	x := "x"
	res.XColumn = &x
	res.YColumns = []string{"y"}
	res.XRange = rangeOf(res.Rows, []int{0})
	res.YRange = rangeOf(res.Rows, []int{1})
	res.DataStartRow = sp.DataLine
	res.notef("Parsed JCAMP-DX %s block with %d points", sp.Form, len(sp.X))
	res.Notes = append(res.Notes, sp.Notes...)
	if units := sp.ldr("XUNITS"); units != "" {
		res.notef("X units: %s", units)
	}
	if units := sp.ldr("YUNITS"); units != "" {
		res.notef("Y units: %s", units)
	}
	return nil
}

// jcampLDR is one labelled data record (##LABEL=value).
type jcampLDR struct {
	Label string
	Norm  string
	Value string
	Line  int
}

type jcampSpectrum struct {
	LDRs     []jcampLDR
	Form     string
	X, Y     []float64
	DataLine int
	Notes    []string
}

func (s *jcampSpectrum) ldr(norm string) string {
	for _, l := range s.LDRs {
		if l.Norm == norm {
			return l.Value
		}
	}
	return ""
}

func (s *jcampSpectrum) ldrFloat(norm string) (float64, bool) {
	v := strings.TrimSpace(s.ldr(norm))
	if v == "" {
		return 0, false
	}
	return parseNumber(v)
}

// normalizeLabel applies the JCAMP-DX label rule: case, spaces, dashes,
// slashes and underscores are not significant.
func normalizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '/', '_', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(label))
}

var (
	jcampToken   = regexp.MustCompile(`\?|[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	jcampResidue = regexp.MustCompile(`^[\s,;]*$`)
)

// jcampValues reads the AFFN/PAC numbers on one data line. "?" marks a
// missing value and comes back as NaN. Anything else left over means the
// line is in a compressed (ASDF) form.
func jcampValues(line string) ([]float64, error) {
	idx := jcampToken.FindAllStringIndex(line, -1)
	vals := make([]float64, 0, len(idx))
	prev := 0
	for _, m := range idx {
		if !jcampResidue.MatchString(line[prev:m[0]]) {
			return nil, fmt.Errorf("%w: compressed JCAMP data near %q", ErrUnsupported, line[prev:m[0]])
		}
		tok := line[m[0]:m[1]]
		if tok == "?" {
			vals = append(vals, math.NaN())
		} else {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", tok, err)
			}
			vals = append(vals, f)
		}
		prev = m[1]
	}
	if !jcampResidue.MatchString(line[prev:]) {
		return nil, fmt.Errorf("%w: compressed JCAMP data near %q", ErrUnsupported, line[prev:])
	}
	return vals, nil
}

func jcampFailure(reason string, err error) *ParseFailure {
	return &ParseFailure{Handler: "jcamp", Reason: reason, Err: err, Fallthrough: true, Fallback: FormatJCAMPError}
}

// parseJCAMP reads the header records and the first data block of a
// JCAMP-DX document.
func parseJCAMP(content string) (*jcampSpectrum, error) {
	sp := &jcampSpectrum{}
	var (
		dataLabel, varList string
		dataLines          []string
		inData, dataDone   bool
	)
scan:
	for i, raw := range splitLines(content) {
		line := raw
		if k := strings.Index(line, "$$"); k >= 0 {
			line = line[:k]
		}
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "##") {
			if inData {
				inData, dataDone = false, true
			}
			label, value, _ := strings.Cut(t[2:], "=")
			label = strings.TrimSpace(label)
			norm := normalizeLabel(label)
			switch norm {
			case "":
				continue
			case "END":
				if dataDone {
					break scan
				}
				continue
			case "XYDATA", "XYPOINTS", "PEAKTABLE", "DATATABLE":
				if dataDone {
					sp.Notes = append(sp.Notes, fmt.Sprintf("Ignored additional %s block at line %d", label, i+1))
					continue
				}
				dataLabel, varList = norm, strings.TrimSpace(value)
				inData = true
				sp.DataLine = i + 1
				continue
			}
			sp.LDRs = append(sp.LDRs, jcampLDR{Label: label, Norm: norm, Value: strings.TrimSpace(value), Line: i})
			continue
		}
		if t == "" {
			continue
		}
		if inData {
			dataLines = append(dataLines, t)
		} else if !dataDone && len(sp.LDRs) > 0 {
			last := &sp.LDRs[len(sp.LDRs)-1]
			last.Value = strings.TrimSpace(last.Value + "\n" + t)
		}
	}
	if dataLabel == "" {
		return nil, jcampFailure("no XYDATA, XYPOINTS, PEAK TABLE or DATA TABLE block", nil)
	}
	if len(dataLines) == 0 {
		return nil, jcampFailure(fmt.Sprintf("%s block has no data lines", dataLabel), nil)
	}

	xf, ok := sp.ldrFloat("XFACTOR")
	if !ok || xf == 0 {
		xf = 1
	}
	yf, ok := sp.ldrFloat("YFACTOR")
	if !ok || yf == 0 {
		yf = 1
	}

	parsed := make([][]float64, 0, len(dataLines))
	for _, l := range dataLines {
		vals, err := jcampValues(l)
		if err != nil {
			return nil, jcampFailure("cannot read data line", err)
		}
		if len(vals) > 0 {
			parsed = append(parsed, vals)
		}
	}

	form := strings.ToUpper(strings.Join(strings.Fields(varList), ""))
	sp.Form = fmt.Sprintf("%s %s", dataLabel, varList)
	var err error
	switch {
	case strings.Contains(form, "X++"):
		err = sp.readIncremental(parsed, xf, yf)
	case strings.Contains(form, "XY"):
		err = sp.readGroups(parsed, form, xf, yf)
	default:
		err = jcampFailure(fmt.Sprintf("variable list %q", varList), ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	if len(sp.X) == 0 {
		return nil, jcampFailure("data block produced no points", nil)
	}
	if n, ok := sp.ldrFloat("NPOINTS"); ok && int(n) != len(sp.X) {
		sp.Notes = append(sp.Notes, fmt.Sprintf("NPOINTS declares %d points but %d were read", int(n), len(sp.X)))
	}
	return sp, nil
}

// readIncremental handles (X++(Y..Y)): each line starts with an abscissa and
// lists ordinates at equal X spacing.
func (sp *jcampSpectrum) readIncremental(lines [][]float64, xf, yf float64) error {
	deltaX, known := 0.0, false
	first, okFirst := sp.ldrFloat("FIRSTX")
	last, okLast := sp.ldrFloat("LASTX")
	npoints, okN := sp.ldrFloat("NPOINTS")
	switch {
	case okFirst && okLast && okN && npoints > 1:
		deltaX, known = (last-first)/(npoints-1), true
	default:
		if d, ok := sp.ldrFloat("DELTAX"); ok {
			deltaX, known = d, true
		}
	}
	if !known {
		switch {
		case len(lines) >= 2 && len(lines[0]) > 1:
			deltaX = (lines[1][0] - lines[0][0]) * xf / float64(len(lines[0])-1)
			sp.Notes = append(sp.Notes, fmt.Sprintf("X spacing estimated from line abscissas: %g", deltaX))
		case len(lines) == 1 && len(lines[0]) > 2:
			return jcampFailure("cannot determine X spacing for a single data line", nil)
		}
	}
	for _, vals := range lines {
		if len(vals) < 2 || math.IsNaN(vals[0]) {
			continue
		}
		x0 := vals[0] * xf
		for j, y := range vals[1:] {
			if math.IsNaN(y) {
				continue
			}
			sp.X = append(sp.X, x0+float64(j)*deltaX)
			sp.Y = append(sp.Y, y*yf)
		}
	}
	return nil
}

// readGroups handles tuple forms such as (XY..XY) or (XYW..XYW); only the
// first two members of each tuple are kept.
func (sp *jcampSpectrum) readGroups(lines [][]float64, form string, xf, yf float64) error {
	size := 2
	if open := strings.Index(form, "("); open >= 0 {
		if dots := strings.Index(form[open:], ".."); dots > 1 {
			size = len(form[open+1 : open+dots])
		}
	}
	if size < 2 {
		return jcampFailure(fmt.Sprintf("tuple form %q", form), ErrUnsupported)
	}
	var flat []float64
	for _, vals := range lines {
		flat = append(flat, vals...)
	}
	if rem := len(flat) % size; rem != 0 {
		sp.Notes = append(sp.Notes, fmt.Sprintf("Ignored %d trailing values that do not form a complete tuple", rem))
	}
	for i := 0; i+size <= len(flat); i += size {
		x, y := flat[i], flat[i+1]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		sp.X = append(sp.X, x*xf)
		sp.Y = append(sp.Y, y*yf)
	}
	return nil
}
