package protocol

import "github.com/choomlang/choom/registry"

// CanonicalJSONSchema builds the JSON Schema for the canonical payload.
// In Strict mode op and target are closed enums; in Permissive mode the
// enums are advisory and any string is accepted.
func CanonicalJSONSchema(reg *registry.Table, mode Mode) map[string]interface{} {
	knownOp := map[string]interface{}{"type": "string", "enum": toAny(reg.KnownOps())}
	knownTarget := map[string]interface{}{"type": "string", "enum": toAny(reg.KnownTargets())}

	var opSchema, targetSchema map[string]interface{}
	if mode == Strict {
		opSchema = map[string]interface{}{
			"$ref":        "#/$defs/knownOp",
			"description": "Canonical operation name.",
		}
		targetSchema = map[string]interface{}{
			"$ref":        "#/$defs/knownTarget",
			"description": "Target domain.",
		}
	} else {
		opSchema = map[string]interface{}{
			"anyOf": []interface{}{
				map[string]interface{}{"$ref": "#/$defs/knownOp"},
				map[string]interface{}{"type": "string"},
			},
			"description": "Canonical operation name. Known ops are enumerated but extensions are allowed.",
		}
		targetSchema = map[string]interface{}{
			"anyOf": []interface{}{
				map[string]interface{}{"$ref": "#/$defs/knownTarget"},
				map[string]interface{}{"type": "string"},
			},
			"description": "Target domain. Known targets are enumerated but extensions are allowed.",
		}
	}

	return map[string]interface{}{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                "ChoomLang canonical payload",
		"type":                 "object",
		"required":             []interface{}{"op", "target", "count", "params"},
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"op":     opSchema,
			"target": targetSchema,
			"count": map[string]interface{}{
				"type":    "integer",
				"minimum": 1,
				"default": 1,
			},
			"params": map[string]interface{}{
				"type":    "object",
				"default": map[string]interface{}{},
				"additionalProperties": map[string]interface{}{
					"anyOf": []interface{}{
						map[string]interface{}{"type": "string"},
						map[string]interface{}{"type": "number"},
						map[string]interface{}{"type": "boolean"},
					},
				},
			},
		},
		"$defs": map[string]interface{}{
			"knownOp":     knownOp,
			"knownTarget": knownTarget,
		},
	}
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
