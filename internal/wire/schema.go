package wire

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Version is the only frame version this package produces and accepts.
const Version = 1

// readingSchema describes one reading frame. Unknown properties are rejected.
const readingSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "reading",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "temperature", "heart_rate", "blood_pressure", "humidity", "oxygen"],
  "properties": {
    "version": {"type": "integer", "enum": [1]},
    "id": {"type": "integer", "minimum": 1},
    "temperature": {"type": "number"},
    "heart_rate": {"type": "integer"},
    "blood_pressure": {"type": "string", "pattern": "^\\s*[0-9]{1,3}\\s*/\\s*[0-9]{1,3}\\s*$"},
    "humidity": {"type": "number"},
    "oxygen": {"type": "integer"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(readingSchema))
	})
	return schema, schemaErr
}
