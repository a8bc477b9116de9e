package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, stdin string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errBuf)
	return out.String(), errBuf.String(), code
}

func TestRunEvaluatesExpression(t *testing.T) {
	out, _, code := runCLI(t, []string{"-c", "a.b"}, `{"a": {"b": "x"}}`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(out) != `"x"` {
		t.Errorf("stdout = %q, want %q", out, `"x"`)
	}
}

func TestRunRawOutput(t *testing.T) {
	out, _, code := runCLI(t, []string{"-r", "a.b"}, `{"a": {"b": "x"}}`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(out) != "x" {
		t.Errorf("stdout = %q, want %q", out, "x")
	}
}

func TestRunSyntaxErrorExitsNonZero(t *testing.T) {
	_, errOut, code := runCLI(t, []string{"a.."}, `{}`)
	if code == 0 {
		t.Fatal("expected a non-zero exit code for a syntax error")
	}
	if !strings.Contains(errOut, "syntax error") {
		t.Errorf("stderr = %q, want a syntax error message", errOut)
	}
}

func TestRunMissingExpressionPrintsUsage(t *testing.T) {
	_, errOut, code := runCLI(t, []string{}, "")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errOut, "usage:") {
		t.Errorf("stderr = %q, want usage text", errOut)
	}
}

func TestRunYAMLInputAndOutput(t *testing.T) {
	out, _, code := runCLI(t, []string{"--yaml", "--yaml-output", "a.b"}, "a:\n  b: 1\n")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(out) != "1" {
		t.Errorf("stdout = %q, want %q", out, "1")
	}
}

func TestRunStrictTypesAcceptsValidCall(t *testing.T) {
	// The standard registry raises on every type mismatch regardless of
	// --strict-types (spec.md's function contract has no FailNull member),
	// so this just confirms the flag doesn't break an otherwise-valid call.
	out, _, code := runCLI(t, []string{"-c", "--strict-types", "length(a)"}, `{"a": "abc"}`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("stdout = %q, want %q", out, "3")
	}
}
