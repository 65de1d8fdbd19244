// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"reflect"
)

// Fields is the minimal delta carried by update messages and queued
// mutations: field name to new value, in JSON form.
type Fields map[string]any

// Normalize returns a copy of f with every value passed through a JSON round
// trip, so values decoded from the wire and values built locally compare
// equal (e.g. int 3 and float64 3).
func (f Fields) Normalize() Fields {
	if f == nil {
		return nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return f.Clone()
	}
	var out Fields
	if err = json.Unmarshal(raw, &out); err != nil {
		return f.Clone()
	}
	return out
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns f overlaid with other. Neither input is modified.
func (f Fields) Merge(other Fields) Fields {
	out := f.Clone()
	if out == nil {
		out = make(Fields, len(other))
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Equal reports whether f and other hold the same normalized values.
func (f Fields) Equal(other Fields) bool {
	return reflect.DeepEqual(f.Normalize(), other.Normalize())
}

// String returns the string value of key, or "" when absent or not a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer value of key, accepting any JSON number form.
func (f Fields) Int(key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// FieldsOf converts any JSON-serialisable value to its Fields form.
func FieldsOf(v any) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out Fields
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode fills dst from the field set via JSON.
func (f Fields) Decode(dst any) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
