// Package parser classifies scientific data files and turns them into
// normalized tables with spectral metadata.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

// Handler parses one family of inputs into a Result. Recoverable failures
// are reported as *ParseFailure.
type Handler interface {
	Name() string
	CanParse(ext string, content []byte) bool
	Parse(content []byte, filename string, res *Result, opt Options) error
}

var registry []Handler

// Register adds a handler. Handlers are tried in registration order and
// delimited text is the fallback.
func Register(h Handler) {
	registry = append(registry, h)
}

func init() {
	Register(imageHandler{})
	Register(fitsHandler{})
	Register(jsonHandler{})
	Register(xlsxHandler{})
	Register(jcampHandler{})
}

// extension returns the lowercased text after the last dot of the file name.
func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func selectHandler(ext string, content []byte) Handler {
	for _, h := range registry {
		if h.CanParse(ext, content) {
			return h
		}
	}
	return delimitedHandler{}
}

// ClassifyAndParse detects the structure of content and returns a normalized
// Result. It never fails: problems are reported through DetectedFormat and
// Notes.
func ClassifyAndParse(content []byte, filename string, opt Options) (res *Result) {
	opt = opt.withDefaults()
	log := opt.Logger.WithFields(logging.Fields{"file": filepath.Base(filename)})
	opt.Logger = log

	res = newResult(FormatUnknown)
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("%v", r), "parser panic recovered")
			res.DetectedFormat = FormatUnknown
			res.Rows = []Row{}
			res.notef("Parsing failed unexpectedly: %v", r)
		}
	}()

	ext := extension(filename)
	h := selectHandler(ext, content)
	log.Debug("handler selected", logging.Fields{"handler": h.Name(), "ext": ext, "bytes": len(content)})

	err := h.Parse(content, filename, res, opt)
	if err == nil {
		log.Debug("parsed", logging.Fields{"format": res.DetectedFormat, "rows": len(res.Rows)})
		return res
	}

	var pf *ParseFailure
	if !errors.As(err, &pf) {
		pf = &ParseFailure{Handler: h.Name(), Reason: "handler error", Err: err, Fallback: FormatUnknown}
	}
	log.Warn("handler failed", logging.Fields{"handler": pf.Handler, "reason": pf.Error()})
	failed := res
	failed.notef("%s parsing failed: %s", strings.ToUpper(pf.Handler), pf.detail())
	if !pf.Fallthrough {
		failed.DetectedFormat = pf.Fallback
		if failed.DetectedFormat == "" {
			failed.DetectedFormat = FormatUnknown
		}
		failed.Rows = []Row{}
		return failed
	}

	res = newResult(FormatUnknown)
	res.Notes = append(res.Notes, failed.Notes...)
	res.notef("Retrying as delimited text")
	parseDelimited(string(content), res, opt)
	if len(res.Rows) > 0 || pf.Fallback == "" {
		return res
	}
	failed.DetectedFormat = pf.Fallback
	failed.Rows = []Row{}
	failed.notef("Delimited fallback found no data rows")
	return failed
}

// ParseFile reads path, enforcing opt.MaxFileBytes, and parses it.
func ParseFile(path string, opt Options) (*Result, error) {
	opt = opt.withDefaults()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if opt.MaxFileBytes > 0 && info.Size() > opt.MaxFileBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, filepath.Base(path), info.Size(), opt.MaxFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ClassifyAndParse(data, filepath.Base(path), opt), nil
}
