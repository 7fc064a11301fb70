package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type jsonHandler struct{}

func (jsonHandler) Name() string { return "json" }

func (jsonHandler) CanParse(ext string, _ []byte) bool { return ext == "json" }

// Parse accepts an array of objects (one row each) or a single object (one
// row). Column names come from the keys of the first object, in order.
func (jsonHandler) Parse(content []byte, _ string, res *Result, opt Options) error {
	objs, err := decodeJSONRecords(content)
	if err != nil {
		return &ParseFailure{Handler: "json", Reason: "not an object or array of objects", Err: err, Fallthrough: true}
	}
	res.DetectedFormat = FormatJSON
	res.HasHeaders = true
	if len(objs) == 0 {
		res.notef("JSON array is empty")
		return nil
	}
	columns := objs[0].keys
	res.ColumnNames = columns
	res.Rows = make([]Row, 0, len(objs))
	for _, o := range objs {
		vals := make([]Value, len(columns))
		for i, c := range columns {
			vals[i] = Text("")
			if raw, ok := o.get(c); ok {
				v, err := jsonCell(raw)
				if err != nil {
					return &ParseFailure{Handler: "json", Reason: fmt.Sprintf("column %q", c), Err: err, Fallthrough: true}
				}
				vals[i] = v
			}
		}
		res.Rows = append(res.Rows, NewRow(columns, vals))
	}
	res.notef("Parsed JSON with %d records and %d columns", len(res.Rows), len(columns))
	detectRoles(res, opt)
	return nil
}

type jsonObject struct {
	keys []string
	raws []json.RawMessage
}

func (o jsonObject) get(key string) (json.RawMessage, bool) {
	for i, k := range o.keys {
		if k == key {
			return o.raws[i], true
		}
	}
	return nil, false
}

func decodeJSONRecords(content []byte) ([]jsonObject, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var objs []jsonObject
	switch trimmed[0] {
	case '{':
		keys, raws, err := decodeOrderedObject(dec)
		if err != nil {
			return nil, err
		}
		objs = append(objs, jsonObject{keys: keys, raws: raws})
	case '[':
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for dec.More() {
			keys, raws, err := decodeOrderedObject(dec)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(objs), err)
			}
			objs = append(objs, jsonObject{keys: keys, raws: raws})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("top-level value starts with %q", trimmed[0])
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after top-level value")
	}
	return objs, nil
}

// jsonCell keeps numbers numeric and strings verbatim; other values become text.
func jsonCell(raw json.RawMessage) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(raw); err != nil {
		return Value{}, err
	}
	return v, nil
}
