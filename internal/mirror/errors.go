package mirror

import (
	"errors"
	"fmt"
)

// ErrNotDirectory means something other than a directory occupies a
// mirror path.
var ErrNotDirectory = errors.New("path exists and is not a directory")

// MetadataError is returned when a sidecar file cannot be written.
type MetadataError struct {
	Path string
	File string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("write %s of %s: %v", e.File, e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
