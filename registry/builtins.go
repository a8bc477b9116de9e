package registry

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Default is the standard JMESPath function library, grounded in structure
// on schemaexec/builtins.go's per-function arity/type tables (there
// symbolic over *oas3.Schema, here concrete over Value).
type Default struct {
	funcs map[string]*Func
}

// NewDefault builds the standard registry.
func NewDefault() *Default {
	d := &Default{funcs: map[string]*Func{}}
	for _, fn := range standardFuncs() {
		d.funcs[fn.Name] = fn
	}
	return d
}

// Lookup implements Registry.
func (d *Default) Lookup(name string) (*Func, bool) {
	fn, ok := d.funcs[name]
	return fn, ok
}

// Register adds or overrides a function, letting callers extend the
// default library without forking it.
func (d *Default) Register(fn *Func) { d.funcs[fn.Name] = fn }

func standardFuncs() []*Func {
	anyT := ArgSpec{Types: []string{"any"}}
	numT := ArgSpec{Types: []string{"number"}}
	strT := ArgSpec{Types: []string{"string"}}
	arrT := ArgSpec{Types: []string{"array"}}
	arrOrStrT := ArgSpec{Types: []string{"array_or_string"}}

	return []*Func{
		{Name: "abs", Min: 1, Max: 1, Args: []ArgSpec{numT}, Apply: func(a []any) (any, error) {
			return math.Abs(a[0].(float64)), nil
		}},
		{Name: "avg", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array"}}}, Apply: func(a []any) (any, error) {
			arr := a[0].([]any)
			if len(arr) == 0 {
				return nil, nil
			}
			sum := 0.0
			for i, v := range arr {
				n, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("avg(): element %d is not a number", i)
				}
				sum += n
			}
			return sum / float64(len(arr)), nil
		}},
		{Name: "ceil", Min: 1, Max: 1, Args: []ArgSpec{numT}, Apply: func(a []any) (any, error) {
			return math.Ceil(a[0].(float64)), nil
		}},
		{Name: "floor", Min: 1, Max: 1, Args: []ArgSpec{numT}, Apply: func(a []any) (any, error) {
			return math.Floor(a[0].(float64)), nil
		}},
		{Name: "contains", Min: 2, Max: 2, Args: []ArgSpec{arrOrStrT, anyT}, Apply: func(a []any) (any, error) {
			switch subject := a[0].(type) {
			case string:
				needle, ok := a[1].(string)
				return ok && strings.Contains(subject, needle), nil
			case []any:
				for _, v := range subject {
					if valuesEqual(v, a[1]) {
						return true, nil
					}
				}
				return false, nil
			default:
				return false, nil
			}
		}},
		{Name: "ends_with", Min: 2, Max: 2, Args: []ArgSpec{strT, strT}, Apply: func(a []any) (any, error) {
			return strings.HasSuffix(a[0].(string), a[1].(string)), nil
		}},
		{Name: "starts_with", Min: 2, Max: 2, Args: []ArgSpec{strT, strT}, Apply: func(a []any) (any, error) {
			return strings.HasPrefix(a[0].(string), a[1].(string)), nil
		}},
		{Name: "join", Min: 2, Max: 2, Args: []ArgSpec{strT, arrT}, Apply: func(a []any) (any, error) {
			sep := a[0].(string)
			arr := a[1].([]any)
			parts := make([]string, len(arr))
			for i, v := range arr {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("join(): element %d is not a string", i)
				}
				parts[i] = s
			}
			return strings.Join(parts, sep), nil
		}},
		{Name: "keys", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"object"}}}, Apply: func(a []any) (any, error) {
			obj := a[0].(map[string]any)
			out := make([]any, 0, len(obj))
			for k := range obj {
				out = append(out, k)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
			return out, nil
		}},
		{Name: "values", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"object"}}}, Apply: func(a []any) (any, error) {
			obj := a[0].(map[string]any)
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := make([]any, len(keys))
			for i, k := range keys {
				out[i] = obj[k]
			}
			return out, nil
		}},
		{Name: "length", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"string", "array", "object"}}}, Apply: func(a []any) (any, error) {
			switch x := a[0].(type) {
			case string:
				return float64(len([]rune(x))), nil
			case []any:
				return float64(len(x)), nil
			case map[string]any:
				return float64(len(x)), nil
			default:
				return nil, fmt.Errorf("length(): unsupported type")
			}
		}},
		{Name: "max", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array"}}}, Apply: func(a []any) (any, error) {
			return extreme(a[0].([]any), false)
		}},
		{Name: "min", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array"}}}, Apply: func(a []any) (any, error) {
			return extreme(a[0].([]any), true)
		}},
		{Name: "sum", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array"}}}, Apply: func(a []any) (any, error) {
			sum := 0.0
			for i, v := range a[0].([]any) {
				n, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("sum(): element %d is not a number", i)
				}
				sum += n
			}
			return sum, nil
		}},
		{Name: "sort", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array"}}}, Apply: func(a []any) (any, error) {
			return sortGeneric(a[0].([]any))
		}},
		{Name: "not_null", Min: 1, Max: -1, Args: []ArgSpec{anyT}, Apply: func(a []any) (any, error) {
			for _, v := range a {
				if v != nil {
					return v, nil
				}
			}
			return nil, nil
		}},
		{Name: "reverse", Min: 1, Max: 1, Args: []ArgSpec{{Types: []string{"array", "string"}}}, Apply: func(a []any) (any, error) {
			switch x := a[0].(type) {
			case []any:
				out := make([]any, len(x))
				for i, v := range x {
					out[len(x)-1-i] = v
				}
				return out, nil
			case string:
				r := []rune(x)
				for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
					r[i], r[j] = r[j], r[i]
				}
				return string(r), nil
			default:
				return nil, fmt.Errorf("reverse(): unsupported type")
			}
		}},
		{Name: "to_array", Min: 1, Max: 1, Args: []ArgSpec{anyT}, Apply: func(a []any) (any, error) {
			if arr, ok := a[0].([]any); ok {
				return arr, nil
			}
			return []any{a[0]}, nil
		}},
		{Name: "to_string", Min: 1, Max: 1, Args: []ArgSpec{anyT}, Apply: func(a []any) (any, error) {
			if s, ok := a[0].(string); ok {
				return s, nil
			}
			return jsonLiteral(a[0]), nil
		}},
		{Name: "to_number", Min: 1, Max: 1, Args: []ArgSpec{anyT}, Apply: func(a []any) (any, error) {
			switch x := a[0].(type) {
			case float64:
				return x, nil
			case string:
				var f float64
				if _, err := fmt.Sscanf(x, "%g", &f); err != nil {
					return nil, nil
				}
				return f, nil
			default:
				return nil, nil
			}
		}},
		{Name: "type", Min: 1, Max: 1, Args: []ArgSpec{anyT}, Apply: func(a []any) (any, error) {
			return jsonTypeName(a[0]), nil
		}},
		{Name: "merge", Min: 0, Max: -1, Args: []ArgSpec{{Types: []string{"object"}}}, Apply: func(a []any) (any, error) {
			out := map[string]any{}
			for _, v := range a {
				obj, ok := v.(map[string]any)
				if !ok {
					continue
				}
				for k, vv := range obj {
					out[k] = vv
				}
			}
			return out, nil
		}},
	}
}

func extreme(arr []any, wantMin bool) (any, error) {
	if len(arr) == 0 {
		return nil, nil
	}
	sorted, ok := sortGeneric(arr)
	if ok != nil {
		return nil, ok
	}
	if wantMin {
		return sorted[0], nil
	}
	return sorted[len(sorted)-1], nil
}

func sortGeneric(arr []any) ([]any, error) {
	out := make([]any, len(arr))
	copy(out, arr)
	if len(out) == 0 {
		return out, nil
	}
	switch out[0].(type) {
	case float64:
		for _, v := range out {
			if _, ok := v.(float64); !ok {
				return nil, fmt.Errorf("sort(): mixed or non-numeric element")
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].(float64) < out[j].(float64) })
	case string:
		for _, v := range out {
			if _, ok := v.(string); !ok {
				return nil, fmt.Errorf("sort(): mixed or non-string element")
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
	default:
		return nil, fmt.Errorf("sort(): elements must be all numbers or all strings")
	}
	return out, nil
}

func valuesEqual(a, b any) bool {
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
		y, ok := b.(float64)
		return ok && x == y
	default:
		return false
	}
}

func jsonLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
