package mapper

import (
	"errors"
	"fmt"

	"github.com/kb-dk/github-cloner/internal/model"
)

var (
	// ErrMissingField means a required field was absent, null or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrUnsafeIdentifier means the identifier cannot be used as a directory name.
	ErrUnsafeIdentifier = errors.New("identifier is not a safe directory name")
)

// SchemaError describes a raw item that could not be mapped.
type SchemaError struct {
	Index int
	Kind  model.CollectionKind
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s item %d: %v", e.Kind, e.Index, e.Err)
	}

	return fmt.Sprintf("%s item %d: %s: %v", e.Kind, e.Index, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
