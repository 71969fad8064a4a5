package model

import (
	"fmt"
	"strings"
)

// OwnerKind tells whether a GitHub account is a user or an organization.
type OwnerKind int

const (
	OwnerUser OwnerKind = iota
	OwnerOrg
)

// PathSegment returns the API path segment for the owner kind.
func (k OwnerKind) PathSegment() string {
	switch k {
	case OwnerOrg:
		return "orgs"
	default:
		return "users"
	}
}

func (k OwnerKind) String() string {
	switch k {
	case OwnerOrg:
		return "org"
	default:
		return "user"
	}
}

// Owner identifies a GitHub account being mirrored.
type Owner struct {
	Name string
	Kind OwnerKind
}

func (o Owner) String() string {
	return o.Kind.String() + ":" + o.Name
}

// CollectionKind selects which collection of an owner is listed.
type CollectionKind int

const (
	KindRepository CollectionKind = iota
	KindGist
)

// AllKinds lists every collection kind in processing order.
var AllKinds = []CollectionKind{KindRepository, KindGist}

// PathSegment returns the API path segment, which is also the top level
// directory the mirrors of this kind live under.
func (k CollectionKind) PathSegment() string {
	switch k {
	case KindGist:
		return "gists"
	default:
		return "repos"
	}
}

func (k CollectionKind) String() string {
	return k.PathSegment()
}

// ParseCollectionKind accepts the singular, plural and long forms.
func ParseCollectionKind(s string) (CollectionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "repo", "repos", "repository", "repositories":
		return KindRepository, nil
	case "gist", "gists":
		return KindGist, nil
	default:
		return KindRepository, fmt.Errorf("unknown collection kind %q", s)
	}
}

// ParseCollectionKinds parses a list of kinds, dropping duplicates while
// keeping the first occurrence order.
func ParseCollectionKinds(values []string) ([]CollectionKind, error) {
	var (
		kinds = make([]CollectionKind, 0, len(values))
		seen  = make(map[CollectionKind]bool)
	)

	for _, v := range values {
		k, err := ParseCollectionKind(v)
		if err != nil {
			return nil, err
		}

		if seen[k] {
			continue
		}

		seen[k] = true
		kinds = append(kinds, k)
	}

	return kinds, nil
}

// Target is one owner together with the collections requested for it.
type Target struct {
	Owner Owner
	Kinds []CollectionKind
}

// Targets builds the run matrix: organizations first, then users, each in
// the given order, all with the same kinds.
func Targets(orgs, users []string, kinds []CollectionKind) []Target {
	targets := make([]Target, 0, len(orgs)+len(users))

	for _, name := range orgs {
		targets = append(targets, Target{Owner: Owner{Name: name, Kind: OwnerOrg}, Kinds: kinds})
	}

	for _, name := range users {
		targets = append(targets, Target{Owner: Owner{Name: name, Kind: OwnerUser}, Kinds: kinds})
	}

	return targets
}
