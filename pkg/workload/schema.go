package workload

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// actionSchema is the JSON Schema for workload actions (spec §6.2). Every
// decoded object is validated against it before being dispatched.
const actionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["action", "time"],
  "additionalProperties": false,
  "properties": {
    "action": {"type": "string", "enum": ["endsim", "newcheck", "removecheck", "changevars"]},
    "time": {"type": "integer", "minimum": 0},
    "checks": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["group", "name"],
        "properties": {
          "group": {"type": "string"},
          "name": {"type": "string"},
          "cost": {"type": "integer", "minimum": 1},
          "priority": {"type": "integer", "minimum": 1, "maximum": 20},
          "misc": {"type": "object"}
        }
      }
    },
    "vars": {"type": "object"}
  },
  "allOf": [
    {
      "if": {"properties": {"action": {"const": "newcheck"}}},
      "then": {
        "required": ["checks"],
        "properties": {
          "checks": {"items": {"required": ["group", "name", "cost", "priority"]}}
        }
      }
    },
    {
      "if": {"properties": {"action": {"const": "removecheck"}}},
      "then": {"required": ["checks"]}
    },
    {
      "if": {"properties": {"action": {"const": "changevars"}}},
      "then": {"required": ["vars"]}
    }
  ]
}`

// compileSchema compiles actionSchema once at driver construction.
func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("workload-action.json", strings.NewReader(actionSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("workload-action.json")
}
