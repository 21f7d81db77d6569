package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// Scalar is a nullable column value kept in the type storage returned it:
// int64, float64, string or bool. The count columns do not enforce a type,
// so a row holding 2.5 or "abc" is echoed back as such.
type Scalar struct {
	v any
}

// ScalarOf wraps v, widening Go numeric kinds to int64 or float64.
func ScalarOf(v any) Scalar {
	var s Scalar
	_ = s.Scan(v)
	return s
}

// Raw returns the held value, nil for NULL.
func (s Scalar) Raw() any { return s.v }

// IsNull reports whether the value is SQL NULL.
func (s Scalar) IsNull() bool { return s.v == nil }

// Int64 returns the value as an integer when it is one.
func (s Scalar) Int64() (int64, bool) {
	switch v := s.v.(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v), true
		}
	}
	return 0, false
}

// Scan implements sql.Scanner.
func (s *Scalar) Scan(src any) error {
	switch v := src.(type) {
	case nil, int64, float64, bool:
		s.v = v
	case int:
		s.v = int64(v)
	case int32:
		s.v = int64(v)
	case float32:
		s.v = float64(v)
	case json.Number:
		s.v = normalize(v)
	case []byte:
		s.v = fromText(string(v))
	case string:
		s.v = fromText(v)
	default:
		return fmt.Errorf("scalar: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (s Scalar) Value() (driver.Value, error) {
	return s.v, nil
}

// GormDataType keeps gorm from treating the struct as a relation.
func (Scalar) GormDataType() string {
	return "numeric"
}

// MarshalJSON writes the held value. Non-finite floats become null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if f, ok := s.v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(s.v)
}

// UnmarshalJSON reads any JSON scalar. Objects and arrays are rejected.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil, bool:
		s.v = v
	case json.Number:
		s.v = normalize(v)
	case string:
		s.v = v
	default:
		return fmt.Errorf("scalar: unsupported JSON value %T", v)
	}
	return nil
}

// fromText converts numeric text, as some drivers return for NUMERIC
// aggregates, and keeps anything else as a string.
func fromText(text string) any {
	var n json.Number
	if err := json.Unmarshal([]byte(text), &n); err != nil {
		return text
	}
	return normalize(n)
}
