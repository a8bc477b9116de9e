package jmespath

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustSearch(t *testing.T, expr string, input Value) Value {
	t.Helper()
	got, err := Search(expr, input)
	if err != nil {
		t.Fatalf("Search(%q): %v", expr, err)
	}
	return got
}

func TestSearchFieldAndIndex(t *testing.T) {
	input := map[string]any{
		"a": map[string]any{"b": "x"},
		"list": []any{1.0, 2.0, 3.0},
	}
	if diff := cmp.Diff("x", mustSearch(t, "a.b", input)); diff != "" {
		t.Errorf("a.b mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(2.0, mustSearch(t, "list[1]", input)); diff != "" {
		t.Errorf("list[1] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(3.0, mustSearch(t, "list[-1]", input)); diff != "" {
		t.Errorf("list[-1] mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchSlice(t *testing.T) {
	input := map[string]any{"list": []any{0.0, 1.0, 2.0, 3.0, 4.0}}
	got := mustSearch(t, "list[1:3]", input)
	if diff := cmp.Diff([]any{1.0, 2.0}, got); diff != "" {
		t.Errorf("list[1:3] mismatch (-want +got):\n%s", diff)
	}
	got = mustSearch(t, "list[::-1]", input)
	if diff := cmp.Diff([]any{4.0, 3.0, 2.0, 1.0, 0.0}, got); diff != "" {
		t.Errorf("list[::-1] mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchProjection(t *testing.T) {
	input := map[string]any{
		"people": []any{
			map[string]any{"name": "a", "age": 10.0},
			map[string]any{"name": "b"},
			map[string]any{"name": "c", "age": 30.0},
		},
	}
	got := mustSearch(t, "people[*].name", input)
	if diff := cmp.Diff([]any{"a", "b", "c"}, got); diff != "" {
		t.Errorf("people[*].name mismatch (-want +got):\n%s", diff)
	}
	// age is missing on "b"; the projection still emits a slot for it.
	got = mustSearch(t, "people[*].age", input)
	if diff := cmp.Diff([]any{10.0, nil, 30.0}, got); diff != "" {
		t.Errorf("people[*].age mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchFlatten(t *testing.T) {
	input := map[string]any{"nested": []any{[]any{1.0, 2.0}, []any{3.0}, 4.0}}
	got := mustSearch(t, "nested[]", input)
	if diff := cmp.Diff([]any{1.0, 2.0, 3.0, 4.0}, got); diff != "" {
		t.Errorf("nested[] mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchFilter(t *testing.T) {
	input := map[string]any{
		"people": []any{
			map[string]any{"name": "a", "age": 10.0},
			map[string]any{"name": "b", "age": 25.0},
			map[string]any{"name": "c", "age": 30.0},
		},
	}
	got := mustSearch(t, "people[?age > `20`].name", input)
	if diff := cmp.Diff([]any{"b", "c"}, got); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchOrAndPipe(t *testing.T) {
	input := map[string]any{"a": nil, "b": "fallback"}
	if diff := cmp.Diff("fallback", mustSearch(t, "a || b", input)); diff != "" {
		t.Errorf("|| mismatch (-want +got):\n%s", diff)
	}
	input2 := map[string]any{"a": map[string]any{"b": map[string]any{"c": "deep"}}}
	if diff := cmp.Diff("deep", mustSearch(t, "a.b | c", input2)); diff != "" {
		t.Errorf("| mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchComparisons(t *testing.T) {
	input := map[string]any{"x": 3.0, "y": 5.0}
	if diff := cmp.Diff(true, mustSearch(t, "x < y", input)); diff != "" {
		t.Errorf("< mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(false, mustSearch(t, "x == y", input)); diff != "" {
		t.Errorf("== mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(true, mustSearch(t, "x != y", input)); diff != "" {
		t.Errorf("!= mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchMultiSelect(t *testing.T) {
	input := map[string]any{"a": "x", "b": "y"}
	got := mustSearch(t, "[a, b]", input)
	if diff := cmp.Diff([]any{"x", "y"}, got); diff != "" {
		t.Errorf("multi-select-list mismatch (-want +got):\n%s", diff)
	}
	got = mustSearch(t, "{first: a, second: b}", input)
	if diff := cmp.Diff(map[string]any{"first": "x", "second": "y"}, got); diff != "" {
		t.Errorf("multi-select-hash mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchMultiSelectOnNull(t *testing.T) {
	if got := mustSearch(t, "[a, b]", nil); got != nil {
		t.Errorf("[a,b] on null input = %v, want nil", got)
	}
	if got := mustSearch(t, "{a: a}", nil); got != nil {
		t.Errorf("{a:a} on null input = %v, want nil", got)
	}
}

func TestSearchFunctionCall(t *testing.T) {
	input := map[string]any{"list": []any{1.0, 2.0, 3.0}}
	if diff := cmp.Diff(3.0, mustSearch(t, "length(list)", input)); diff != "" {
		t.Errorf("length mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(6.0, mustSearch(t, "sum(list)", input)); diff != "" {
		t.Errorf("sum mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(true, mustSearch(t, "contains(list, `2`)", input)); diff != "" {
		t.Errorf("contains mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchSyntaxError(t *testing.T) {
	_, err := Search("a..b", nil)
	if err == nil {
		t.Fatal("expected a syntax error for 'a..b'")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
}

func TestEvaluateAllIndependence(t *testing.T) {
	program, err := Compile("a.b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inputs := make([]Value, 50)
	for i := range inputs {
		inputs[i] = map[string]any{"a": map[string]any{"b": float64(i)}}
	}
	results, err := EvaluateAll(context.Background(), program, inputs)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	for i, r := range results {
		if diff := cmp.Diff(float64(i), r); diff != "" {
			t.Errorf("result[%d] mismatch (-want +got):\n%s", i, diff)
		}
	}
}
