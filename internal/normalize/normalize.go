// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw spreadsheet cells into document values.
// A cell becomes either a scalar or an ordered list of strings; empty cells
// are absent and never reach a document.
package normalize

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Kind tags a Value as a scalar or a list.
type Kind int

const (
	KindScalar Kind = iota
	KindList
)

func (k Kind) String() string {
	if k == KindList {
		return "list"
	}
	return "scalar"
}

// Value is a normalized cell: a scalar (string, int, float64, bool) or a list
// of strings. The zero Value is an empty string scalar and is never returned
// by Normalize.
type Value struct {
	kind   Kind
	scalar any
	list   []string
}

// Scalar wraps v as a scalar Value.
func Scalar(v any) Value { return Value{kind: KindScalar, scalar: v} }

// List wraps items as a list Value. The slice is copied.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...)}
}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.kind == KindList }

// Scalar returns the scalar payload, or nil for a list.
func (v Value) Scalar() any {
	if v.kind == KindList {
		return nil
	}
	return v.scalar
}

// List returns a copy of the list payload, or nil for a scalar.
func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	return append([]string(nil), v.list...)
}

// Interface returns the payload as a plain Go value: []string for lists,
// the scalar otherwise. It is what the YAML encoder sees.
func (v Value) Interface() any {
	if v.kind == KindList {
		return v.List()
	}
	return v.scalar
}

// First returns the string form of a scalar, or the first list element.
// ok is false for an empty list.
func (v Value) First() (string, bool) {
	if v.kind == KindList {
		if len(v.list) == 0 {
			return "", false
		}
		return v.list[0], true
	}
	return fmt.Sprint(v.scalar), true
}

// Strings returns the value as strings: the list items, or a one-element
// slice holding the scalar's string form.
func (v Value) Strings() []string {
	if v.kind == KindList {
		return v.List()
	}
	return []string{fmt.Sprint(v.scalar)}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindList {
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	}
	return v.scalar == o.scalar
}

func (v Value) String() string {
	if v.kind == KindList {
		return "[" + strings.Join(v.list, ", ") + "]"
	}
	return fmt.Sprint(v.scalar)
}

// Normalize converts a raw cell into a Value. ok is false when the cell is
// absent: nil, NaN, or a string that is empty after trimming. Strings go
// through SplitList; numbers and booleans pass through; a Value is returned
// unchanged so Normalize is idempotent.
func Normalize(raw any) (Value, bool) {
	switch x := raw.(type) {
	case nil:
		return Value{}, false
	case Value:
		if x.kind == KindList && len(x.list) == 0 {
			return Value{}, false
		}
		if s, isStr := x.scalar.(string); x.kind == KindScalar && isStr {
			return normalizeString(s)
		}
		return x, true
	case string:
		return normalizeString(x)
	case bool:
		return Scalar(x), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Scalar(x), true
	case float32:
		if math.IsNaN(float64(x)) {
			return Value{}, false
		}
		return Scalar(x), true
	case float64:
		if math.IsNaN(x) {
			return Value{}, false
		}
		return Scalar(x), true
	case []string:
		return normalizeItems(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, it := range x {
			if it == nil {
				continue
			}
			items = append(items, fmt.Sprint(it))
		}
		return normalizeItems(items)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Value{}, false
		}
		return Normalize(rv.Elem().Interface())
	}
	return normalizeString(fmt.Sprint(raw))
}

func normalizeString(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	v := SplitList(s)
	if v.kind == KindList && len(v.list) == 0 {
		return Value{}, false
	}
	return v, true
}

func normalizeItems(items []string) (Value, bool) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return Value{}, false
	}
	return Value{kind: KindList, list: out}, true
}

// SplitList applies the "looks like a list" heuristic to a trimmed string.
// A string containing a comma that is not wrapped in {...} or [...] becomes a
// list of its trimmed, non-empty comma-separated segments; anything else is a
// scalar. Values with legitimate commas ("Revenue, net of refunds") are
// split too: the heuristic cannot tell them apart.
func SplitList(s string) Value {
	if !strings.Contains(s, ",") || isStructuredLiteral(s) {
		return Scalar(s)
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return Value{kind: KindList, list: items}
}

func isStructuredLiteral(s string) bool {
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}
