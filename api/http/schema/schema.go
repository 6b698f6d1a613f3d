// Package schema validates request bodies against the embedded JSON Schemas
// before they are decoded into request structs.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// Schema names.
const (
	Credentials = "credentials"
	TaskCreate  = "task_create"
	TaskUpdate  = "task_update"
)

const baseURL = "https://taskboard.local/schemas/"

//go:embed schemas/*.json
var files embed.FS

// Validator holds the compiled request schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	var names []string
	for _, e := range entries {
		data, err := files.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(baseURL+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		s, err := compiler.Compile(baseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Decode validates body against the named schema and unmarshals it into dst.
// Any failure is reported as a validation error.
func (v *Validator) Decode(name string, body []byte, dst any) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	doc, err := decodeValue(body)
	if err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	if err := s.Validate(doc); err != nil {
		return toValidationError(err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	return nil
}

// decodeValue reads exactly one JSON value. Numbers stay json.Number so the
// validator sees them unrounded.
func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return doc, nil
}

// toValidationError reports the first leaf cause, which names the offending field.
func toValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return apperr.Validation(err.Error())
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		return apperr.Validation(leaf.Message)
	}
	return apperr.Validation(fmt.Sprintf("%s: %s", field, leaf.Message))
}
