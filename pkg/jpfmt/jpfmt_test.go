package jpfmt

import (
	"testing"
)

func mustFormat(t *testing.T, expr string) string {
	t.Helper()
	got, err := Format(expr)
	if err != nil {
		t.Fatalf("Format(%q): %v", expr, err)
	}
	return got
}

func TestFormatNormalizesSpacing(t *testing.T) {
	cases := map[string]string{
		"a.b.c":              "a.b.c",
		"a  .  b":            "a.b",
		"people[*].name":     "people[*].name",
		"foo||bar":           "foo || bar",
		"a|b":                "a | b",
		"[a,b,c]":            "[a, b, c]",
		"{first:a,second:b}": "{first: a, second: b}",
		"length(a)":          "length(a)",
		"a[?age>`20`].name":  "a[?age > `20`].name",
	}
	for in, want := range cases {
		if got := mustFormat(t, in); got != want {
			t.Errorf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQuotesNonBareIdentifiers(t *testing.T) {
	got := mustFormat(t, `"with space"`)
	want := `"with space"`
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatCanonicalizesLiteralsToBacktick(t *testing.T) {
	got := mustFormat(t, "'raw string'")
	want := "`\"raw string\"`"
	if got != want {
		t.Errorf("Format('raw string') = %q, want %q", got, want)
	}
}

func TestFormatPropagatesSyntaxError(t *testing.T) {
	if _, err := Format("a.."); err == nil {
		t.Fatal("expected a syntax error for 'a..'")
	}
}
