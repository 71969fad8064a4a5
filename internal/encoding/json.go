// Package encoding holds small file and JSON helpers shared by the stores
// and the command line output.
package encoding

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON unmarshals JSON data into the provided type.
func ParseJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &result, nil
}

// ToJSON marshals a value to JSON bytes.
func ToJSON[T any](value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return data, nil
}

// WriteJSON writes value to w as indented JSON followed by a newline.
func WriteJSON[T any](w io.Writer, value T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}

	return nil
}
