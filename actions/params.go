package actions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrDecodeParams is returned when a parameter document is not valid JSON.
var ErrDecodeParams = errors.New("failed to parse params")

// Params is the parameter record handed to an action. Values keep the JSON
// document model: numbers are json.Number, booleans are bool.
type Params struct {
	values map[string]any
}

// DecodeParams decodes a JSON parameter document. A document that is valid
// JSON but not an object (including null) yields an empty record.
func DecodeParams(data []byte) (Params, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Params{}, fmt.Errorf("%w: empty document", ErrDecodeParams)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrDecodeParams, err)
	}
	if dec.More() {
		return Params{}, fmt.Errorf("%w: trailing data after document", ErrDecodeParams)
	}

	obj, _ := doc.(map[string]any)
	return Params{values: obj}, nil
}

// NewParams builds a record from Go values. Numeric values of any Go numeric
// type are accepted.
func NewParams(values map[string]any) Params {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = normalize(v)
	}
	return Params{values: out}
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return json.Number(fmt.Sprint(n))
	case int32:
		return json.Number(fmt.Sprint(n))
	case int64:
		return json.Number(fmt.Sprint(n))
	case float32:
		return json.Number(fmt.Sprint(n))
	case float64:
		return json.Number(fmt.Sprint(n))
	}
	return v
}

// Int returns the named numeric parameter truncated toward zero. The second
// result is false when the parameter is absent or not a number.
func (p Params) Int(name string) (int64, bool) {
	n, ok := p.values[name].(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

// Bool returns the named boolean parameter. The second result is false when
// the parameter is absent or not a boolean.
func (p Params) Bool(name string) (bool, bool) {
	b, ok := p.values[name].(bool)
	return b, ok
}

// Has reports whether the parameter is present, whatever its type.
func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Raw returns the document as a plain map suitable for schema validation.
// Numbers are converted to float64.
func (p Params) Raw() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// String renders the record for log lines.
func (p Params) String() string {
	if len(p.values) == 0 {
		return "{}"
	}
	data, err := json.Marshal(p.values)
	if err != nil {
		return "{}"
	}
	return string(data)
}
