// Package model decodes FatSecret success payloads into typed records.
//
// The API encodes numbers as JSON strings, collapses one-element lists into
// a bare object and omits lists entirely when they are empty. The helper
// types in this file absorb those quirks so the record types stay plain.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var null = []byte("null")

// Float is an optional number that may arrive as a JSON number or string.
type Float struct {
	Value float64
	Valid bool
}

// F returns a valid Float. Handy in tests and fixtures.
func F(v float64) Float { return Float{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	s, ok, err := scalar(b)
	if err != nil || !ok {
		*f = Float{}
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("number %q: %w", s, err)
	}
	*f = Float{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes the number, or null when unset.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return null, nil
	}
	return strconv.AppendFloat(nil, f.Value, 'f', -1, 64), nil
}

// Int is an optional integer that may arrive as a JSON number or string.
type Int struct {
	Value int64
	Valid bool
}

// I returns a valid Int.
func I(v int64) Int { return Int{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler. Values such as "24.000" are
// accepted as long as they are whole.
func (n *Int) UnmarshalJSON(b []byte) error {
	s, ok, err := scalar(b)
	if err != nil || !ok {
		*n = Int{}
		return err
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Int{Value: v, Valid: true}
		return nil
	}
	fv, err := strconv.ParseFloat(s, 64)
	if err != nil || fv != float64(int64(fv)) {
		return fmt.Errorf("integer %q: invalid value", s)
	}
	*n = Int{Value: int64(fv), Valid: true}
	return nil
}

// MarshalJSON writes the integer, or null when unset.
func (n Int) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return null, nil
	}
	return strconv.AppendInt(nil, n.Value, 10), nil
}

// ID is an identifier the API sends either as a string or a number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	s, _, err := scalar(b)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// scalar extracts the text of a JSON string or number. ok is false for null
// and for the empty string.
func scalar(b []byte) (s string, ok bool, err error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		return "", false, nil
	}
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return "", false, fmt.Errorf("expected string or number, got %s", b)
	}
	return num.String(), true, nil
}

// List is a JSON list the API may collapse to a single object when it has
// one element, or send as null.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(b, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}
