package main

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// sessionSchema describes a session document posted to the web API
const sessionSchema = `{
  "type": "object",
  "required": ["customer", "slots"],
  "properties": {
    "customer": {
      "type": "object",
      "required": ["dob"],
      "properties": {
        "name": {"type": "string", "maxLength": 200},
        "dob": {
          "type": "object",
          "required": ["day", "month", "year"],
          "properties": {
            "day": {"type": "integer", "minimum": 1, "maximum": 31},
            "month": {"type": "integer", "minimum": 1, "maximum": 12},
            "year": {"type": "integer", "minimum": 1900, "maximum": 2100}
          }
        }
      }
    },
    "slots": {
      "type": "array",
      "minItems": 1,
      "maxItems": 4,
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "product": {"type": "string", "enum": ["", "Everlink Signature", "Everlink Plus", "Ultimate Link", "Assured Link"]},
          "riders": {"type": ["array", "null"], "items": {"type": "string"}, "uniqueItems": true},
          "rider_sas": {"type": ["object", "null"], "additionalProperties": {"type": "integer", "minimum": 0}},
          "life_sa": {"type": "integer", "minimum": 0},
          "ci_sa": {"type": "integer", "minimum": 0},
          "ci_tier": {"type": "integer", "enum": [0, 36, 77, 157]},
          "pa_sa": {"type": "integer", "minimum": 0},
          "premium_70": {"type": "integer", "minimum": 0},
          "premium_80": {"type": "integer", "minimum": 0},
          "age1": {"type": "integer", "enum": [0, 60, 70, 80, 90, 100]},
          "age2": {"type": "integer", "enum": [0, 60, 70, 80, 90, 100]},
          "assured_love_option": {"type": "string", "enum": ["", "5years", "10years"]},
          "pa_minor_accident": {"type": "boolean"},
          "jaundice_amount": {"type": "integer", "enum": [0, 500, 1000, 2000]},
          "pa_weekly_indemnity": {"type": "integer", "minimum": 0},
          "secure_cover_parent": {"type": "string", "enum": ["", "Father", "Mother"]}
        }
      }
    },
    "advisor": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "contact": {"type": "string"},
        "photo": {"type": "string"}
      }
    }
  }
}`

var sessionSchemaLoader = gojsonschema.NewStringLoader(sessionSchema)

// ValidateSessionDocument checks a raw JSON session against the schema
func ValidateSessionDocument(body []byte) error {
	result, err := gojsonschema.Validate(sessionSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid session document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return ValidationError{Field: "session", Message: strings.Join(problems, "; ")}
}
