package model

import (
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the shapes a submission value can take.
type ValueKind int

const (
	// KindAbsent is the zero Value: the field was not present at all.
	KindAbsent ValueKind = iota
	// KindScalar is a single string-rendered value.
	KindScalar
	// KindRecord is a nested sub-form keyed by field name.
	KindRecord
	// KindList is a repeatable sub-form: an ordered list of records.
	KindList
)

// Record is one nested sub-form: field name to value.
type Record map[string]Value

// Value is the tagged union a submission value tree is built from.
// Accessors fail closed: asking a scalar for its list yields ok=false,
// never a panic. Shape mismatches are treated as absence downstream.
type Value struct {
	kind   ValueKind
	scalar string
	record Record
	list   []Record
}

// Scalar wraps a scalar string value.
func Scalar(s string) Value { return Value{kind: KindScalar, scalar: s} }

// Rec wraps a nested record value.
func Rec(r Record) Value { return Value{kind: KindRecord, record: r} }

// List wraps a repeatable sub-form value.
func List(rs []Record) Value { return Value{kind: KindList, list: rs} }

// Kind returns the shape tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is missing entirely.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsScalar returns the scalar string, ok=false for any other shape.
func (v Value) AsScalar() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	return v.scalar, true
}

// AsRecord returns the nested record, ok=false for any other shape.
func (v Value) AsRecord() (Record, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	return v.record, true
}

// AsList returns the repeated records, ok=false for any other shape.
func (v Value) AsList() ([]Record, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// IsSentinelValue reports whether the value is a scalar holding one of the
// null-state sentinels.
func (v Value) IsSentinelValue() bool {
	s, ok := v.AsScalar()
	return ok && IsSentinel(s)
}

// DecodeValue converts a decoded-JSON value (string, number, bool, nil,
// map, or slice) into the tagged union. Unrecognized shapes decode as
// absent rather than erroring; absence is data.
func DecodeValue(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case string:
		return Scalar(t)
	case bool:
		if t {
			return Scalar("Yes")
		}
		return Scalar("No")
	case json.Number:
		return Scalar(t.String())
	case float64:
		return Scalar(fmt.Sprintf("%v", t))
	case map[string]any:
		rec := make(Record, len(t))
		for k, rv := range t {
			rec[k] = DecodeValue(rv)
		}
		return Rec(rec)
	case []any:
		records := make([]Record, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				// A list of scalars is not a sub-form; treat the whole
				// value as absent rather than guessing a shape.
				return Value{}
			}
			rec := make(Record, len(m))
			for k, rv := range m {
				rec[k] = DecodeValue(rv)
			}
			records = append(records, rec)
		}
		return List(records)
	default:
		return Value{}
	}
}

// DecodeTree converts a decoded-JSON object into a Record value tree.
func DecodeTree(raw map[string]any) Record {
	rec := make(Record, len(raw))
	for k, rv := range raw {
		rec[k] = DecodeValue(rv)
	}
	return rec
}
