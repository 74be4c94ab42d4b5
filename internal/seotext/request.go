package seotext

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed request.schema.json
var requestSchemaJSON string

// Request is the JSON envelope a page renderer sends for one evaluation.
type Request struct {
	PageType           string  `json:"page_type"`
	CanonicalPath      string  `json:"canonical_path"`
	RequestedIndexable bool    `json:"requested_indexable"`
	Content            Content `json:"content"`
}

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "request validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for key, msg := range e.Fields {
		keys = append(keys, key+": "+msg)
	}
	sort.Strings(keys)
	return "request validation failed: " + strings.Join(keys, "; ")
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ParseRequest decodes and validates a request payload. requirePageType is
// false for side-effect free callers such as fingerprint previews.
func ParseRequest(payload []byte, requirePageType bool) (*Request, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode request JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, schemaValidationError(err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize request JSON: %w", err)
	}

	var req Request
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	req.PageType = strings.ToLower(strings.TrimSpace(req.PageType))

	if err := validateSemantics(&req, requirePageType); err != nil {
		return nil, err
	}
	return &req, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("request.schema.json", strings.NewReader(requestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}
	return value, nil
}

func schemaValidationError(err error) error {
	fields := map[string]string{}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return &ValidationError{Fields: map[string]string{"$": err.Error()}}
	}
	collectLeafErrors(validationErr, fields)
	if len(fields) == 0 {
		fields["$"] = validationErr.Message
	}
	return &ValidationError{Fields: fields}
}

func collectLeafErrors(err *jsonschema.ValidationError, fields map[string]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "$"
		}
		if _, exists := fields[location]; !exists {
			fields[location] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectLeafErrors(cause, fields)
	}
}

func validateSemantics(req *Request, requirePageType bool) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	fields := map[string]string{}
	if requirePageType && req.PageType == "" {
		fields["/page_type"] = "page_type must not be empty"
	}
	if strings.TrimSpace(req.CanonicalPath) == "" {
		fields["/canonical_path"] = "canonical_path must not be empty"
	}
	if strings.TrimSpace(req.Content.Title) == "" {
		fields["/content/title"] = "title must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
