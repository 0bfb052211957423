// Package openapi exports goarg schemas as OpenAPI 3 component schemas.
package openapi

import (
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/jsonschema"
)

// For returns the OpenAPI schema of the schema-bound struct T.
func For[T any]() (*openapi3.Schema, error) {
	js, err := jsonschema.For[T]()
	if err != nil {
		return nil, err
	}
	return Convert(js), nil
}

// From converts a goarg schema.
func From(s *goarg.Schema) (*openapi3.Schema, error) {
	js, err := jsonschema.From(s)
	if err != nil {
		return nil, err
	}
	return Convert(js), nil
}

// Register adds the schema of T to doc.Components under name and returns a
// reference to it.
func Register[T any](doc *openapi3.T, name string) (*openapi3.SchemaRef, error) {
	s, err := For[T]()
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	doc.Components.Schemas[name] = openapi3.NewSchemaRef("", s)
	return openapi3.NewSchemaRef("#/components/schemas/"+name, s), nil
}

// RequestBody builds a JSON request body for T.
func RequestBody[T any]() (*openapi3.RequestBody, error) {
	s, err := For[T]()
	if err != nil {
		return nil, err
	}
	return openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(s), nil
}

// Convert maps a JSON Schema projection onto openapi3. A oneOf with a null
// branch becomes a nullable schema, as OpenAPI 3.0 expects.
func Convert(js *jsonschema.Schema) *openapi3.Schema {
	if js == nil {
		return nil
	}
	if len(js.OneOf) == 2 && js.OneOf[1].Type == "null" {
		return Convert(js.OneOf[0]).WithNullable()
	}
	out := openapi3.NewSchema()
	if js.Type != "" {
		out.Type = &openapi3.Types{js.Type}
	}
	out.Format = js.Format
	out.Description = js.Description
	out.Default = js.Default
	out.Pattern = js.Pattern
	if len(js.Enum) > 0 {
		out.Enum = append([]any(nil), js.Enum...)
	}
	if js.MinLength != nil {
		out.MinLength = uint64(*js.MinLength)
	}
	if js.MaxLength != nil {
		out.WithMaxLength(int64(*js.MaxLength))
	}
	if js.Minimum != nil {
		out.WithMin(*js.Minimum)
	}
	if js.Maximum != nil {
		out.WithMax(*js.Maximum)
	}
	if js.MinItems != nil {
		out.MinItems = uint64(*js.MinItems)
	}
	if js.MaxItems != nil {
		out.WithMaxItems(int64(*js.MaxItems))
	}
	if js.Items != nil {
		out.Items = openapi3.NewSchemaRef("", Convert(js.Items))
	}
	if len(js.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(js.Properties))
		for name, p := range js.Properties {
			out.Properties[name] = openapi3.NewSchemaRef("", Convert(p))
		}
	}
	if len(js.Required) > 0 {
		out.Required = append([]string(nil), js.Required...)
	}
	if ap, ok := js.AdditionalProperties.(*jsonschema.Schema); ok {
		out.WithAdditionalProperties(Convert(ap))
	}
	for _, o := range js.OneOf {
		out.OneOf = append(out.OneOf, openapi3.NewSchemaRef("", Convert(o)))
	}
	return out
}

// ForType returns the OpenAPI schema of the schema-bound struct type t.
func ForType(t reflect.Type) (*openapi3.Schema, error) {
	s, err := goarg.SchemaFor(t)
	if err != nil {
		return nil, err
	}
	return From(s)
}
