package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter map. Setting an existing key
// replaces its value in place.
type Params struct {
	items []Param
}

// NewParams builds Params from alternating key/value arguments.
func NewParams(kv ...any) Params {
	var p Params
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		p = p.With(key, kv[i+1])
	}
	return p
}

func (p Params) Clone() Params {
	if len(p.items) == 0 {
		return Params{}
	}
	items := make([]Param, len(p.items))
	copy(items, p.items)
	return Params{items: items}
}

// With returns a copy of p with key set to value.
func (p Params) With(key string, value any) Params {
	out := p.Clone()
	for i := range out.items {
		if out.items[i].Key == key {
			out.items[i].Value = value
			return out
		}
	}
	out.items = append(out.items, Param{Key: key, Value: value})
	return out
}

func (p Params) Get(key string) (any, bool) {
	for _, item := range p.items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p Params) Len() int {
	return len(p.items)
}

func (p Params) Keys() []string {
	keys := make([]string, len(p.items))
	for i, item := range p.items {
		keys[i] = item.Key
	}
	return keys
}

func (p Params) Items() []Param {
	return p.Clone().items
}

// Text returns the value of key rendered as text, or "" when absent.
func (p Params) Text(key string) string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func (p Params) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

func (p Params) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(f + 0.5*sign(f)), true
}

// Strings returns a list parameter; a single string is treated as one item.
func (p Params) Strings(key string) []string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

func (p Params) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, item := range p.items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", item.Key, item.Value)
	}
	b.WriteByte('}')
	return b.String()
}

func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range p.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(item.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", item.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the source object.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Params{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameters must be a JSON object")
	}
	var out Params
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected parameter key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("param %q: %w", key, err)
		}
		out = out.With(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
