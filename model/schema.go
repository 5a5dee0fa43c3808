package model

import "github.com/xeipuuv/gojsonschema"

var documentSchema = gojsonschema.NewStringLoader(documentSchemaJSON)

// Schema returns the JSON schema of the persisted document format.
func Schema() string {
	return documentSchemaJSON
}

// documentSchemaJSON describes the persisted document format.
// Type-gated element fields are optional and nullable, since they default when absent.
const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["elements", "connections"],
  "properties": {
    "version": {"type": "string"},
    "metadata": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "description": {"type": "string"},
        "author": {"type": "string"},
        "version": {"type": "string"},
        "created": {"type": "string"},
        "modified": {"type": "string"},
        "tags": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    },
    "elements": {
      "type": "array",
      "items": {"$ref": "#/definitions/element"}
    },
    "connections": {
      "type": "array",
      "items": {"$ref": "#/definitions/connection"}
    }
  },
  "definitions": {
    "nullableString": {"type": ["string", "null"]},
    "nullableInteger": {"type": ["integer", "null"]},
    "nullableBoolean": {"type": ["boolean", "null"]},
    "element": {
      "type": "object",
      "required": ["element_id", "element_type"],
      "properties": {
        "element_id": {"type": "string", "minLength": 1},
        "element_type": {
          "type": "string",
          "enum": [
            "annotation", "condition", "container", "counter", "data_store",
            "decision", "document", "end", "error_handler", "gateway",
            "interlock", "process", "start", "state", "subprocess"
          ]
        },
        "name": {"type": "string"},
        "x": {"type": "number"},
        "y": {"type": "number"},
        "description": {"type": "string"},
        "responsible_authority": {"type": "string"},
        "legal_basis": {"type": "string"},
        "deadline_days": {"type": "integer"},
        "geo_reference": {"type": "string"},
        "ref_file": {"type": "string"},
        "members": {"type": ["array", "null"], "items": {"type": "string"}},
        "collapsed": {"type": "boolean"},

        "counter_type": {"$ref": "#/definitions/nullableString"},
        "counter_start_value": {"$ref": "#/definitions/nullableInteger"},
        "counter_max_value": {"$ref": "#/definitions/nullableInteger"},
        "counter_current_value": {"$ref": "#/definitions/nullableInteger"},
        "counter_reset_on_max": {"$ref": "#/definitions/nullableBoolean"},
        "counter_on_max_reached": {"$ref": "#/definitions/nullableString"},

        "condition_checks": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "field": {"type": "string"},
              "operator": {"type": "string"},
              "value": {"type": "string"},
              "check_type": {"type": "string"}
            }
          }
        },
        "condition_logic": {"$ref": "#/definitions/nullableString"},
        "condition_true_target": {"$ref": "#/definitions/nullableString"},
        "condition_false_target": {"$ref": "#/definitions/nullableString"},

        "error_handler_type": {"$ref": "#/definitions/nullableString"},
        "error_retry_count": {"$ref": "#/definitions/nullableInteger"},
        "error_retry_delay": {"$ref": "#/definitions/nullableInteger"},
        "error_timeout": {"$ref": "#/definitions/nullableInteger"},
        "error_on_error_target": {"$ref": "#/definitions/nullableString"},
        "error_on_success_target": {"$ref": "#/definitions/nullableString"},
        "error_log_errors": {"$ref": "#/definitions/nullableBoolean"},

        "state_name": {"$ref": "#/definitions/nullableString"},
        "state_type": {"$ref": "#/definitions/nullableString"},
        "state_entry_action": {"$ref": "#/definitions/nullableString"},
        "state_exit_action": {"$ref": "#/definitions/nullableString"},
        "state_transitions": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "event": {"type": "string"},
              "target": {"type": "string"},
              "condition": {"type": "string"}
            }
          }
        },
        "state_timeout": {"$ref": "#/definitions/nullableInteger"},
        "state_timeout_target": {"$ref": "#/definitions/nullableString"},

        "interlock_type": {"$ref": "#/definitions/nullableString"},
        "interlock_resource_id": {"$ref": "#/definitions/nullableString"},
        "interlock_max_count": {"$ref": "#/definitions/nullableInteger"},
        "interlock_timeout": {"$ref": "#/definitions/nullableInteger"},
        "interlock_on_locked_target": {"$ref": "#/definitions/nullableString"},
        "interlock_auto_release": {"$ref": "#/definitions/nullableBoolean"}
      }
    },
    "connection": {
      "type": "object",
      "required": ["connection_id", "source_element", "target_element"],
      "properties": {
        "connection_id": {"type": "string", "minLength": 1},
        "source_element": {"type": "string"},
        "target_element": {"type": "string"},
        "connection_type": {
          "type": ["string", "null"],
          "enum": ["association", "data", "dependency", "information", "sequence", null]
        },
        "description": {"type": "string"},
        "arrow_style": {"type": "string"},
        "routing_mode": {"type": "string"},
        "waypoints": {
          "type": ["array", "null"],
          "items": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {"type": "number"}
          }
        }
      }
    }
  }
}`
