package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

const maxBodyBytes = 64 << 10

var (
	createTodoSchema = mustCompileSchema("create_todo.json")
	updateTodoSchema = mustCompileSchema("update_todo.json")
)

var errEmptyBody = errors.New("empty body")

// requestError is a client mistake in the request body. Its message is safe
// to echo back.
type requestError struct {
	Path    string
	Message string
}

func (e *requestError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := embeddedSchemas.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// decodeValidated reads the JSON body, checks it against schema and decodes
// it into out. Nothing reaches the store unless this returns nil.
func decodeValidated(r *http.Request, schema *jsonschema.Schema, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &requestError{Message: fmt.Sprintf("read body: %v", err)}
	}
	if len(data) > maxBodyBytes {
		return &requestError{Message: "body too large"}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &requestError{Message: fmt.Sprintf("invalid json: %v", err)}
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &requestError{Message: fmt.Sprintf("invalid json: %v", err)}
	}
	return nil
}

// schemaError reduces a schema failure to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &requestError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.TrimPrefix(ve.InstanceLocation, "/")
	msg := ve.Message
	if path == "title" && strings.HasPrefix(msg, "does not match pattern") {
		msg = "must not be blank"
	}
	return &requestError{Path: path, Message: msg}
}
