package model

import (
	"encoding/json"
	"strings"
)

// NoDescription is written when GitHub has no description for an item.
const NoDescription = "(no description)"

// RawItem is one undecoded element of a GitHub list response.
type RawItem = json.RawMessage

// Repository is a repository or gist normalized for mirroring.
type Repository struct {
	// Identifier is the repository name, or the gist id for gists.
	// It names the mirror directory.
	Identifier string `json:"identifier"`

	Description string `json:"description"`

	// CloneURL is the URL the mirror is cloned from and fetched against.
	CloneURL string `json:"clone_url"`

	// HTMLURL is the web page of the item, empty when GitHub did not send one.
	HTMLURL string `json:"html_url,omitempty"`
}

// DirName is the name of the bare mirror directory.
func (r Repository) DirName() string {
	return r.Identifier + ".git"
}

// Summary returns the first line of the description, cut to max runes.
func (r Repository) Summary(max int) string {
	return FirstLine(r.Description, max)
}

// FirstLine returns the first line of s, cut to max runes with a trailing
// "..." when longer.
func FirstLine(s string, max int) string {
	line, _, _ := strings.Cut(s, "\n")
	line = strings.TrimRight(line, "\r")

	runes := []rune(line)
	if max > 3 && len(runes) > max {
		return string(runes[:max-3]) + "..."
	}

	return line
}

// DescriptionText is the content of the description sidecar file.
func (r Repository) DescriptionText() string {
	if r.HTMLURL == "" {
		return r.Description
	}

	return r.Description + "\n\n" + r.HTMLURL
}
