package mirror

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/model"
)

// Sidecar file names inside a mirror directory.
const (
	DescriptionFile = "description"
	CloneURLFile    = "cloneurl"
)

const sidecarPerm os.FileMode = 0o644

// MetadataWriter writes the sidecar files read by git web front ends.
type MetadataWriter struct{}

// NewMetadataWriter returns a MetadataWriter.
func NewMetadataWriter() *MetadataWriter {
	return &MetadataWriter{}
}

// WriteDescription replaces <path>/description with text.
func (w *MetadataWriter) WriteDescription(path, text string) error {
	return w.write(path, DescriptionFile, text)
}

// WriteCloneURL replaces <path>/cloneurl with url.
func (w *MetadataWriter) WriteCloneURL(path, url string) error {
	return w.write(path, CloneURLFile, url)
}

// Write writes both sidecars for repo. A failure in one does not prevent
// the other; all failures are returned together.
func (w *MetadataWriter) Write(path string, repo model.Repository) error {
	var result *multierror.Error

	if err := w.WriteDescription(path, repo.DescriptionText()); err != nil {
		result = multierror.Append(result, err)
	}

	if err := w.WriteCloneURL(path, repo.CloneURL); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func (w *MetadataWriter) write(path, file, text string) error {
	if err := encoding.WriteText(filepath.Join(path, file), text, sidecarPerm); err != nil {
		return &MetadataError{Path: path, File: file, Err: err}
	}

	return nil
}
