package transform

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func parseNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if doc.Kind == yaml.DocumentNode {
		return doc.Content[0]
	}
	return &doc
}

func TestParseExtensionRequiresMapping(t *testing.T) {
	node := parseNode(t, "- a\n- b\n")
	if _, err := ParseExtension(node); err == nil {
		t.Fatal("expected an error for a non-mapping extension node")
	}
}

func TestParseExtensionRequiresExpression(t *testing.T) {
	node := parseNode(t, "foo: bar\n")
	if _, err := ParseExtension(node); err == nil {
		t.Fatal("expected an error when 'expression' is missing")
	}
}

func TestParseExtensionRejectsBadExpression(t *testing.T) {
	node := parseNode(t, "expression: 'a..'\n")
	if _, err := ParseExtension(node); err == nil {
		t.Fatal("expected a compile error for an invalid jmespath expression")
	}
}

func TestApplyProjectsDocument(t *testing.T) {
	ext := parseNode(t, "expression: people[*].name\n")
	fn, err := ParseExtension(ext)
	if err != nil {
		t.Fatalf("ParseExtension: %v", err)
	}

	doc := parseNode(t, `
people:
  - name: alice
    age: 30
  - name: bob
    age: 25
`)
	out, err := Apply(fn, doc)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var got []string
	if err := out.Decode(&got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	want := []string{"alice", "bob"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Apply result = %v, want %v", got, want)
	}
}
