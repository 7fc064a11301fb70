package parser

import (
	"errors"
	"fmt"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

// Format is the structural classification reported for an input file.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatTSV        Format = "tsv"
	FormatSemicolon  Format = "semicolon-separated"
	FormatPipe       Format = "pipe-separated"
	FormatSpace      Format = "space-separated"
	FormatJSON       Format = "json"
	FormatJCAMP      Format = "jcamp"
	FormatJCAMPError Format = "jcamp-error"
	FormatXLSX       Format = "xlsx"
	FormatImage      Format = "unsupported-image"
	FormatFITS       Format = "fits-binary"
	FormatEmpty      Format = "empty"
	FormatUnknown    Format = "unknown"
)

// Supported reports whether results of this format carry usable tabular data.
func (f Format) Supported() bool {
	switch f {
	case FormatImage, FormatFITS, FormatJCAMPError, FormatEmpty, FormatUnknown, "":
		return false
	default:
		return true
	}
}

// Tuning defaults for the ingestion heuristics.
const (
	// DefaultScanLines caps how many non-empty lines delimiter inference looks at.
	DefaultScanLines = 50
	// DefaultNumericLines caps how many numeric lines are scored per candidate delimiter.
	DefaultNumericLines = 10
	// DefaultMetadataRatio is the numeric-token share below which a line reads as text.
	DefaultMetadataRatio = 0.5
	// DefaultRoleSample is how many leading values decide whether a column is numeric.
	DefaultRoleSample = 10
	// DefaultMaxStoragePoints caps rows kept after downsampling.
	DefaultMaxStoragePoints = 2000
	// DefaultPreviewRows is the preview length handed to presentation layers.
	DefaultPreviewRows = 100
	// DefaultMaxFileBytes is the ingestion size cap applied by ParseFile.
	DefaultMaxFileBytes = 100 << 20
)

// Options tunes the ingestion pipeline. Zero fields take the defaults above.
type Options struct {
	ScanLines     int
	NumericLines  int
	MetadataRatio float64
	RoleSample    int
	// MaxFileBytes bounds ParseFile; a negative value disables the check.
	MaxFileBytes int64
	// Logger receives stage-by-stage debug traces. Nil discards them.
	Logger logging.Logger
}

// DefaultOptions returns the documented heuristic thresholds.
func DefaultOptions() Options {
	return Options{
		ScanLines:     DefaultScanLines,
		NumericLines:  DefaultNumericLines,
		MetadataRatio: DefaultMetadataRatio,
		RoleSample:    DefaultRoleSample,
		MaxFileBytes:  DefaultMaxFileBytes,
	}
}

func (o Options) withDefaults() Options {
	if o.ScanLines <= 0 {
		o.ScanLines = DefaultScanLines
	}
	if o.NumericLines <= 0 {
		o.NumericLines = DefaultNumericLines
	}
	if o.MetadataRatio <= 0 || o.MetadataRatio > 1 {
		o.MetadataRatio = DefaultMetadataRatio
	}
	if o.RoleSample <= 0 {
		o.RoleSample = DefaultRoleSample
	}
	if o.MaxFileBytes == 0 {
		o.MaxFileBytes = DefaultMaxFileBytes
	}
	o.Logger = logging.OrNoOp(o.Logger)
	return o
}

// Range summarizes the numeric values of one or more columns.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// MetadataRow records a pre-data line that was kept as metadata.
type MetadataRow struct {
	Line    int      `json:"line"`
	Content string   `json:"content"`
	Kind    LineKind `json:"type"`
	Key     string   `json:"key,omitempty"`
	Value   string   `json:"value,omitempty"`
}

// Result is the normalized outcome of parsing one file. Notes carry the
// human-readable provenance of every decision taken along the way.
type Result struct {
	DetectedFormat   Format            `json:"detectedFormat"`
	HasHeaders       bool              `json:"hasHeaders"`
	Delimiter        *string           `json:"delimiter"`
	ColumnNames      []string          `json:"columnNames"`
	Rows             []Row             `json:"rows"`
	Notes            []string          `json:"notes"`
	MetadataRows     []MetadataRow     `json:"metadataRows"`
	SpectralMetadata map[string]string `json:"spectralMetadata"`
	XColumn          *string           `json:"xColumn"`
	YColumns         []string          `json:"yColumns"`
	XRange           *Range            `json:"xRange"`
	YRange           *Range            `json:"yRange"`
	DataStartRow     int               `json:"dataStartRow"`
}

func newResult(format Format) *Result {
	return &Result{
		DetectedFormat:   format,
		ColumnNames:      []string{},
		Rows:             []Row{},
		Notes:            []string{},
		MetadataRows:     []MetadataRow{},
		SpectralMetadata: map[string]string{},
		YColumns:         []string{},
	}
}

func (r *Result) notef(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// ColumnIndex returns the position of name in ColumnNames, or -1.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.ColumnNames {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every row's value for the named column.
func (r *Result) Column(name string) ([]Value, bool) {
	idx := r.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.At(idx)
	}
	return out, true
}

// XName returns the X column name or "" when none was detected.
func (r *Result) XName() string {
	if r.XColumn == nil {
		return ""
	}
	return *r.XColumn
}

// ErrUnsupported marks inputs whose encoding is recognized but not implemented.
var ErrUnsupported = errors.New("unsupported data encoding")

// ErrTooLarge is returned by ParseFile when the input exceeds MaxFileBytes.
var ErrTooLarge = errors.New("file exceeds size limit")

// ParseFailure is a recoverable handler failure. The dispatcher records it in
// the notes and decides whether to retry the content as delimited text.
type ParseFailure struct {
	Handler string
	Reason  string
	Err     error
	// Fallthrough asks the dispatcher to retry the content as delimited text.
	Fallthrough bool
	// Fallback is reported when no tabular data can be recovered at all.
	Fallback Format
}

func (e *ParseFailure) Error() string {
	return e.Handler + ": " + e.detail()
}

func (e *ParseFailure) detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseFailure) Unwrap() error { return e.Err }
