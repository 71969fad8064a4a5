// Package mapper normalizes raw GitHub list items into model.Repository
// values. It performs no I/O.
//
// Field resolution per kind:
//
//	kind        identifier            clone URL
//	repository  name, else id        ssh_url
//	gist        id (never name)       ssh_url if present, else git_pull_url
//
// Values are taken verbatim. The description falls back to
// model.NoDescription only when it is null, absent or empty.
package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kb-dk/github-cloner/internal/model"
)

// rawItem holds the fields of a repository or gist object that are read.
type rawItem struct {
	ID          json.RawMessage `json:"id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	SSHURL      *string         `json:"ssh_url"`
	GitPullURL  *string         `json:"git_pull_url"`
	HTMLURL     *string         `json:"html_url"`
}

// Map converts items of one kind. Items that fail are left out and their
// *SchemaError values are returned together as a *multierror.Error; the
// other items are still returned, in input order.
func Map(items []model.RawItem, kind model.CollectionKind) ([]model.Repository, error) {
	var (
		repos  = make([]model.Repository, 0, len(items))
		result *multierror.Error
	)

	for i, item := range items {
		repo, err := mapOne(i, item, kind)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		repos = append(repos, repo)
	}

	return repos, result.ErrorOrNil()
}

// MapOne converts a single item.
func MapOne(item model.RawItem, kind model.CollectionKind) (model.Repository, error) {
	return mapOne(0, item, kind)
}

func mapOne(index int, item model.RawItem, kind model.CollectionKind) (model.Repository, error) {
	var raw rawItem
	if err := json.Unmarshal(item, &raw); err != nil {
		return model.Repository{}, &SchemaError{Index: index, Kind: kind, Err: fmt.Errorf("invalid JSON object: %w", err)}
	}

	var (
		identifier, idField string
		cloneURL, urlField  string
	)

	switch kind {
	case model.KindGist:
		identifier, idField = idString(raw.ID), "id"
		cloneURL, urlField = firstNonEmpty(raw.SSHURL, raw.GitPullURL), "git_pull_url"
	default:
		identifier, idField = deref(raw.Name), "name"
		if identifier == "" {
			identifier = idString(raw.ID)
		}

		cloneURL, urlField = deref(raw.SSHURL), "ssh_url"
	}

	if identifier == "" {
		return model.Repository{}, &SchemaError{Index: index, Kind: kind, Field: idField, Err: ErrMissingField}
	}

	if !safeIdentifier(identifier) {
		return model.Repository{}, &SchemaError{
			Index: index, Kind: kind, Field: idField,
			Err: fmt.Errorf("%w: %q", ErrUnsafeIdentifier, identifier),
		}
	}

	if cloneURL == "" {
		return model.Repository{}, &SchemaError{Index: index, Kind: kind, Field: urlField, Err: ErrMissingField}
	}

	description := model.NoDescription
	if raw.Description != nil && *raw.Description != "" {
		description = *raw.Description
	}

	return model.Repository{
		Identifier:  identifier,
		Description: description,
		CloneURL:    cloneURL,
		HTMLURL:     deref(raw.HTMLURL),
	}, nil
}

// idString renders a JSON id, which GitHub sends as a number for
// repositories and as a string for gists.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

func safeIdentifier(id string) bool {
	if id == "." || id == ".." {
		return false
	}

	return !strings.ContainsAny(id, "/\\\x00")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if s := deref(v); s != "" {
			return s
		}
	}

	return ""
}
