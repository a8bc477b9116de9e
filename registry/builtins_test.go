package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCallLength(t *testing.T) {
	reg := NewDefault()
	got, err := Call(reg, "length", []any{"héllo"})
	if err != nil {
		t.Fatalf("Call(length): %v", err)
	}
	if diff := cmp.Diff(5.0, got); diff != "" {
		t.Errorf("length(\"héllo\") mismatch (-want +got):\n%s", diff)
	}
}

func TestCallSortAndReverse(t *testing.T) {
	reg := NewDefault()
	got, err := Call(reg, "sort", []any{[]any{3.0, 1.0, 2.0}})
	if err != nil {
		t.Fatalf("Call(sort): %v", err)
	}
	if diff := cmp.Diff([]any{1.0, 2.0, 3.0}, got); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}

	got, err = Call(reg, "reverse", []any{"abc"})
	if err != nil {
		t.Fatalf("Call(reverse): %v", err)
	}
	if diff := cmp.Diff("cba", got); diff != "" {
		t.Errorf("reverse(\"abc\") mismatch (-want +got):\n%s", diff)
	}
}

func TestCallArityError(t *testing.T) {
	reg := NewDefault()
	_, err := Call(reg, "length", []any{"a", "b"})
	if err == nil {
		t.Fatal("expected an ArityError for length() with 2 arguments")
	}
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected *ArityError, got %T: %v", err, err)
	}
}

func TestCallNotFound(t *testing.T) {
	reg := NewDefault()
	_, err := Call(reg, "nonexistent", nil)
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}

func TestCallTypeMismatchRaises(t *testing.T) {
	// ends_with declares plain string args with the zero-value FailurePolicy
	// (FailRaise), so a non-string argument should raise, not null out.
	reg := NewDefault()
	_, err := Call(reg, "ends_with", []any{"abc", 5.0})
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T: %v", err, err)
	}
}

func TestCallWithOptionsMaxArgs(t *testing.T) {
	reg := NewDefault()
	opts := Options{MaxArgs: 2}
	_, err := CallWithOptions(reg, "not_null", []any{1.0, 2.0, 3.0}, opts)
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected *ArityError from the MaxArgs ceiling, got %T: %v", err, err)
	}
}

func TestCallWithOptionsStrictTypes(t *testing.T) {
	// None of the standard functions declare a FailNull arg policy (every
	// type mismatch in the real JMESPath function contract raises), so
	// this exercises StrictTypes against a custom null-on-mismatch
	// registration, the kind --strict-types is meant to override.
	reg := NewDefault()
	reg.Register(&Func{
		Name: "lenient", Min: 1, Max: 1,
		Args:  []ArgSpec{{Types: []string{"string"}, Failure: FailNull}},
		Apply: func(a []any) (any, error) { return a[0], nil },
	})

	got, err := CallWithOptions(reg, "lenient", []any{5.0}, DefaultOptions())
	if err != nil {
		t.Fatalf("lenient() under the default policy should null out, got error: %v", err)
	}
	if got != nil {
		t.Errorf("lenient() = %v, want nil", got)
	}

	strict := Options{MaxArgs: 32, StrictTypes: true}
	_, err = CallWithOptions(reg, "lenient", []any{5.0}, strict)
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError under StrictTypes, got %T: %v", err, err)
	}
}

func TestContainsArrayAndString(t *testing.T) {
	reg := NewDefault()
	got, err := Call(reg, "contains", []any{[]any{1.0, 2.0, 3.0}, 2.0})
	if err != nil {
		t.Fatalf("Call(contains): %v", err)
	}
	if diff := cmp.Diff(true, got); diff != "" {
		t.Errorf("contains mismatch (-want +got):\n%s", diff)
	}

	got, err = Call(reg, "contains", []any{"abcdef", "cde"})
	if err != nil {
		t.Fatalf("Call(contains): %v", err)
	}
	if diff := cmp.Diff(true, got); diff != "" {
		t.Errorf("contains mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeCombinesObjectsLastWins(t *testing.T) {
	reg := NewDefault()
	got, err := Call(reg, "merge", []any{
		map[string]any{"a": 1.0, "b": 2.0},
		map[string]any{"b": 3.0},
	})
	if err != nil {
		t.Fatalf("Call(merge): %v", err)
	}
	want := map[string]any{"a": 1.0, "b": 3.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterOverridesDefault(t *testing.T) {
	d := NewDefault()
	d.Register(&Func{
		Name: "length", Min: 1, Max: 1,
		Args:  []ArgSpec{{Types: []string{"any"}}},
		Apply: func(a []any) (any, error) { return 42.0, nil },
	})
	got, err := Call(d, "length", []any{"ignored"})
	if err != nil {
		t.Fatalf("Call(length): %v", err)
	}
	if diff := cmp.Diff(42.0, got); diff != "" {
		t.Errorf("overridden length mismatch (-want +got):\n%s", diff)
	}
}
