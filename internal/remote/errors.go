package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is a failure to get a successful response from the API:
// either the request never completed (StatusCode 0) or GitHub answered
// with a non-2xx status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response arrived but was not a UTF-8 JSON array.
type ProtocolError struct {
	URL         string
	ContentType string
	Err         error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response from %s (content-type %q): %v", e.URL, e.ContentType, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound
}
