package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/choomlang/choom/registry"
)

func TestCanonicalJSONSchemaStrict(t *testing.T) {
	table := registry.Default()
	schema := CanonicalJSONSchema(table, Strict)

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("schema must marshal: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"https://json-schema.org/draft/2020-12/schema",
		`"required"`,
		"knownOp",
		"knownTarget",
		`"gen"`,
		`"healthcheck"`,
		`"tool"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %s in schema", want)
		}
	}

	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("schema must have object properties")
	}
	for _, key := range []string{"op", "target", "count", "params"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
	if schema["additionalProperties"] != false {
		t.Error("top-level additionalProperties must be false")
	}

	// strict op property is a bare $ref to the known-op enum
	op, _ := props["op"].(map[string]interface{})
	if _, hasRef := op["$ref"]; !hasRef {
		t.Errorf("strict op property must be a $ref, got %v", op)
	}
}

func TestCanonicalJSONSchemaPermissive(t *testing.T) {
	table := registry.Default()
	schema := CanonicalJSONSchema(table, Permissive)

	props, _ := schema["properties"].(map[string]interface{})
	op, _ := props["op"].(map[string]interface{})
	anyOf, ok := op["anyOf"].([]interface{})
	if !ok || len(anyOf) != 2 {
		t.Fatalf("permissive op property must be an anyOf pair, got %v", op)
	}
}

func TestCanonicalJSONSchemaCount(t *testing.T) {
	table := registry.Default()
	schema := CanonicalJSONSchema(table, Strict)
	props, _ := schema["properties"].(map[string]interface{})
	count, _ := props["count"].(map[string]interface{})
	if count["type"] != "integer" {
		t.Errorf("count must be an integer, got %v", count["type"])
	}
	if count["minimum"] != 1 {
		t.Errorf("count minimum must be 1, got %v", count["minimum"])
	}
}
