package schemashape

import (
	"testing"

	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/sequencedmap"

	jmespath "github.com/nozzle/jmespath"
)

func mustCompile(t *testing.T, expr string) *jmespath.Program {
	t.Helper()
	p, err := jmespath.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q): %v", expr, err)
	}
	return p
}

func TestInferField(t *testing.T) {
	props := sequencedmap.New[string, *oas3.JSONSchema[oas3.Referenceable]]()
	props.Set("name", oas3.NewJSONSchemaFromSchema[oas3.Referenceable](scalarType(oas3.SchemaTypeString)))
	obj := &oas3.Schema{Type: oas3.NewTypeFromString(oas3.SchemaTypeObject), Properties: props}

	result, err := Infer(mustCompile(t, "name"), obj, DefaultOptions())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	typ, ok := singleType(result.Schema)
	if !ok || typ != oas3.SchemaTypeString {
		t.Fatalf("name shape = %v, want string", result.Schema)
	}
}

func TestInferProjection(t *testing.T) {
	elem := &oas3.Schema{Type: oas3.NewTypeFromString(oas3.SchemaTypeNumber)}
	arr := arrayOf(elem)

	result, err := Infer(mustCompile(t, "[*]"), arr, DefaultOptions())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	typ, ok := singleType(result.Schema)
	if !ok || typ != oas3.SchemaTypeArray {
		t.Fatalf("[*] shape = %v, want array", result.Schema)
	}
	elemType, ok := singleType(items(result.Schema))
	if !ok || elemType != oas3.SchemaTypeNumber {
		t.Fatalf("[*] element shape = %v, want number", items(result.Schema))
	}
}

func TestInferUnknownFunctionWidensUnlessStrict(t *testing.T) {
	input := scalarType(oas3.SchemaTypeString)
	result, err := Infer(mustCompile(t, "length(@)"), input, DefaultOptions())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a widening warning for a function call")
	}

	strict := DefaultOptions()
	strict.StrictMode = true
	if _, err := Infer(mustCompile(t, "length(@)"), input, strict); err == nil {
		t.Error("expected an error in strict mode for an unmodeled function call")
	}
}
