package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one cell of a parsed row: either a finite number or text.
type Value struct {
	num   float64
	text  string
	isNum bool
}

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{num: f, isNum: true} }

// Text wraps a textual cell.
func Text(s string) Value { return Value{text: s} }

// ParseValue trims s and keeps it as a number when it parses as a finite float.
func ParseValue(s string) Value {
	t := strings.TrimSpace(s)
	if f, ok := parseNumber(t); ok {
		return Number(f)
	}
	return Text(t)
}

// parseNumber accepts plain decimal and scientific notation. NaN and Inf are
// left as text so ranges never see them.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNumber(s string) bool {
	_, ok := parseNumber(strings.TrimSpace(s))
	return ok
}

func (v Value) IsNumber() bool { return v.isNum }

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) { return v.num, v.isNum }

func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum && !math.IsNaN(v.num) && !math.IsInf(v.num, 0) {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.String())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = Text("")
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*v = Text(string(b))
	case b[0] == '{' || b[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Text(buf.String())
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("cell value %s: %w", b, err)
		}
		*v = Number(f)
	}
	return nil
}

// Row is a fixed-schema record: Values line up with the column names of the
// Result it belongs to.
type Row struct {
	columns []string
	values  []Value
}

// NewRow pads missing trailing cells with empty text and drops extra cells.
func NewRow(columns []string, values []Value) Row {
	vals := make([]Value, len(columns))
	copy(vals, values)
	for i := len(values); i < len(columns); i++ {
		vals[i] = Text("")
	}
	return Row{columns: columns, values: vals}
}

func (r Row) Columns() []string { return r.columns }
func (r Row) Values() []Value   { return r.values }
func (r Row) Len() int          { return len(r.values) }

// At returns the i-th cell, or empty text when out of range.
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r.values) {
		return Text("")
	}
	return r.values[i]
}

// Get looks a cell up by column name.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.At(i), true
		}
	}
	return Value{}, false
}

// MarshalJSON renders the row as an object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := r.At(i).MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	keys, raws, err := decodeOrderedObject(dec)
	if err != nil {
		return err
	}
	vals := make([]Value, len(raws))
	for i, raw := range raws {
		if err := vals[i].UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", keys[i], err)
		}
	}
	*r = Row{columns: keys, values: vals}
	return nil
}

// decodeOrderedObject reads one JSON object from dec, keeping key order.
func decodeOrderedObject(dec *json.Decoder) ([]string, []json.RawMessage, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	var raws []json.RawMessage
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", kt)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", key, err)
		}
		keys = append(keys, key)
		raws = append(raws, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, raws, nil
}
