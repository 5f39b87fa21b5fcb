// Package jsonvalue defines the JSON tree shape the normalizer and
// denormalizer walk: whatever encoding/json decodes into interface{}
// (map[string]any, []any, string, json.Number, bool, nil), plus the handful
// of helpers the cache cares about — reference placeholders and canonical
// serialization for cache-key derivation.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RefField is the sentinel field name for a reference placeholder:
// {"__ref": "Typename:id"}.
const RefField = "__ref"

// Decode parses raw JSON text into the tree representation normalize and
// denormalize operate over. Numbers are kept as json.Number so that
// re-encoding reproduces the original literal exactly, which matters for the
// normalize-then-denormalize round-trip contract.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("jsonvalue: decode: %w", err)
	}
	return v, nil
}

// Encode serializes the tree representation back to JSON text.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: encode: %w", err)
	}
	return b, nil
}

// Canonical serializes v for cache-key derivation. encoding/json already
// sorts map[string]any keys on marshal; Canonical exists so call sites in
// entitykey don't depend on that being an implementation detail of the
// stdlib encoder.
func Canonical(v any) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Object asserts v as a decoded JSON object.
func Object(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// Array asserts v as a decoded JSON array.
func Array(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// StringField reads a string-typed field from a decoded JSON object.
func StringField(obj map[string]any, field string) (string, bool) {
	raw, ok := obj[field]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// Ref builds a reference placeholder for the given entity key.
func Ref(entityKey string) map[string]any {
	return map[string]any{RefField: entityKey}
}

// RefKey reports whether v is a reference placeholder and, if so, the entity
// key it points to. A reference is an object with exactly one field,
// __ref, whose value is a string.
func RefKey(v any) (string, bool) {
	obj, ok := Object(v)
	if !ok || len(obj) != 1 {
		return "", false
	}
	raw, ok := obj[RefField]
	if !ok {
		return "", false
	}
	key, ok := raw.(string)
	return key, ok
}

// CloneObject returns a shallow copy of obj, the way every normalize/merge
// step rebuilds a new object rather than mutating the one it was handed.
func CloneObject(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}
