package device

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const messageSchemaURL = "arsketch://device-message.schema.json"

// messageSchema describes every message a device may send.
const messageSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["hello", "touch", "pose", "tracking", "ui", "undo", "redo"]},
    "sessionId": {"type": "string"},
    "clientId": {"type": "string"},
    "payload": {"type": "object"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "hello"}}},
      "then": {
        "required": ["payload"],
        "properties": {"payload": {
          "required": ["screenWidth"],
          "properties": {"screenWidth": {"type": "number", "exclusiveMinimum": 0}}
        }}
      }
    },
    {
      "if": {"properties": {"type": {"const": "touch"}}},
      "then": {
        "required": ["payload"],
        "properties": {"payload": {
          "required": ["id", "phase", "position", "rawPosition"],
          "properties": {
            "id": {"type": "integer"},
            "phase": {"enum": ["began", "moved", "stationary", "ended"]},
            "position": {"$ref": "#/definitions/vec2"},
            "rawPosition": {"$ref": "#/definitions/vec2"}
          }
        }}
      }
    },
    {
      "if": {"properties": {"type": {"const": "pose"}}},
      "then": {
        "required": ["payload"],
        "properties": {"payload": {
          "required": ["position", "forward"],
          "properties": {
            "position": {"$ref": "#/definitions/vec3"},
            "forward": {"$ref": "#/definitions/vec3"}
          }
        }}
      }
    },
    {
      "if": {"properties": {"type": {"const": "tracking"}}},
      "then": {
        "required": ["payload"],
        "properties": {"payload": {
          "required": ["tracking"],
          "properties": {"tracking": {"type": "boolean"}}
        }}
      }
    },
    {
      "if": {"properties": {"type": {"const": "ui"}}},
      "then": {
        "required": ["payload"],
        "properties": {"payload": {
          "required": ["touchId", "overUi"],
          "properties": {
            "touchId": {"type": "integer"},
            "overUi": {"type": "boolean"}
          }
        }}
      }
    }
  ],
  "definitions": {
    "vec2": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2},
    "vec3": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3}
  }
}`

var compiledMessageSchema = mustCompileMessageSchema()

func mustCompileMessageSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(messageSchemaURL, strings.NewReader(messageSchema)); err != nil {
		panic(fmt.Sprintf("add message schema: %v", err))
	}
	schema, err := compiler.Compile(messageSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compile message schema: %v", err))
	}
	return schema
}

// DecodeMessage validates raw device input against the message schema and
// decodes it.
func DecodeMessage(data []byte) (*Message, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	if err := compiledMessageSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	return &msg, nil
}
