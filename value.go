package jmespath

import (
	"fmt"
	"sort"
)

// Value is a JSON-domain value: nil, bool, float64, string, []any or
// map[string]any. Object-shaped outputs built by this package are plain
// map[string]any values, so they do not keep the order in which store_key
// set their keys.
type Value = any

// isTruthy implements JMESPath truthiness: false, null, empty array, empty
// object, and empty string are falsy; everything else is truthy.
func isTruthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// isNull reports whether v is the JSON null value.
func isNull(v Value) bool { return v == nil }

// valuesEqual implements JMESPath structural equality.
func valuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := toFloat(b)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			yv, ok := y[k]
			if !ok || !valuesEqual(v, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// compareOrdered implements the ordering comparisons (>, >=, <, <=). Only
// numbers compare with ordering per spec.md §4.2; anything else yields
// (0, false) and the caller must substitute null.
func compareOrdered(a, b Value) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

// sliceParams resolves Python-style slice defaults over a length, per the
// `slice` instruction's contract in spec.md §4.2.
func sliceParams(start, stop, step *int, length int) (s, e, st int) {
	st = 1
	if step != nil {
		st = *step
	}
	if st == 0 {
		st = 1
	}
	if st > 0 {
		s, e = 0, length
	} else {
		s, e = length-1, -length-1
	}
	if start != nil {
		s = clampIndex(*start, length, st)
	}
	if stop != nil {
		e = clampIndex(*stop, length, st)
	}
	return s, e, st
}

func clampIndex(i, length, step int) int {
	if i < 0 {
		i += length
		if i < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
		return i
	}
	if i >= length {
		if step < 0 {
			return length - 1
		}
		return length
	}
	return i
}

func applySlice(arr []any, start, stop, step *int) []any {
	length := len(arr)
	s, e, st := sliceParams(start, stop, step, length)
	var out []any
	if st > 0 {
		for i := s; i < e; i += st {
			if i < 0 || i >= length {
				continue
			}
			out = append(out, arr[i])
		}
	} else {
		for i := s; i > e; i += st {
			if i < 0 || i >= length {
				continue
			}
			out = append(out, arr[i])
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}

// normalizeIndex resolves a possibly-negative array index; ok is false when
// the index is out of range and the caller must yield null.
func normalizeIndex(n, length int) (int, bool) {
	if n < 0 {
		n += length
	}
	if n < 0 || n >= length {
		return 0, false
	}
	return n, true
}

// sortValues sorts a []any of homogeneous comparable elements (numbers or
// strings) the way the `sort` builtin requires; mixed-type input is left
// reported by the caller via ok=false.
func sortValues(arr []any) ([]any, bool) {
	out := make([]any, len(arr))
	copy(out, arr)
	if len(out) == 0 {
		return out, true
	}
	switch out[0].(type) {
	case float64:
		for _, v := range out {
			if _, ok := v.(float64); !ok {
				return nil, false
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].(float64) < out[j].(float64) })
		return out, true
	case string:
		for _, v := range out {
			if _, ok := v.(string); !ok {
				return nil, false
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
		return out, true
	default:
		return nil, false
	}
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
