package scene

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Structural validation only: unknown keys pass through (the editor adds
// fields between releases), but objects must name their resources and every
// node needs an id.
const sceneSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "pid": {"type": "string"},
          "t_p": {"type": "array", "items": {"type": "number"}},
          "t_r": {"type": "array", "items": {"type": "number"}},
          "t_s": {"type": "array", "items": {"type": "number"}}
        }
      }
    },
    "objects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "data", "pal"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "pid": {"type": "string"},
          "data": {"type": "string", "minLength": 1},
          "pal": {"type": "string", "minLength": 1},
          "t_p": {"type": "array", "items": {"type": "number"}},
          "t_r": {"type": "array", "items": {"type": "number"}},
          "t_s": {"type": "array", "items": {"type": "number"}}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("scene.schema.json", sceneSchema)

func validate(raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return compiledSchema.Validate(v)
}
