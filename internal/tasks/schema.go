package tasks

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

//go:embed schema.json
var schemaJSON string

var fileSchema = jsonschema.MustCompileString("tasks.schema.json", schemaJSON)

// validateDocument checks a decoded JSON value against the task file schema.
// The first leaf failure is reported as a ValidationError carrying its path.
func validateDocument(doc any) error {
	err := fileSchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate task file: %w", err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &model.ValidationError{
		Field: instancePath(ve.InstanceLocation),
		Err:   fmt.Errorf("%s", ve.Message),
	}
}

// instancePath renders a schema instance location such as "/0/title" as
// "[0].title". Task file documents only nest an array index and a key.
func instancePath(location string) string {
	var b strings.Builder
	for _, part := range strings.Split(location, "/") {
		switch {
		case part == "":
		case isIndex(part):
			b.WriteString("[" + part + "]")
		default:
			b.WriteString("." + part)
		}
	}
	return strings.TrimPrefix(b.String(), ".")
}

func isIndex(part string) bool {
	_, err := strconv.Atoi(part)
	return err == nil
}
