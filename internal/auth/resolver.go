// Package auth resolves the optional GitHub token from a prioritized list of
// sources. Tokens are passed through to the API client and never stored.
package auth

import (
	"fmt"
	"os"
	"strings"
)

// Source indicates where a token was found
type Source string

const (
	SourceFlag Source = "flag"
	SourceEnv  Source = "env"
	SourceNone Source = "none"
)

// Result contains the resolved token and its source
type Result struct {
	Token  string
	Source Source
	Name   string // e.g. "flag", "GITHUB_TOKEN"
}

// Anonymous reports whether no token was found.
func (r *Result) Anonymous() bool {
	return r == nil || r.Token == ""
}

// TokenProvider returns a token and the name of its source, or an empty
// token when the source has none. Errors are reserved for unexpected failures.
type TokenProvider func() (token string, sourceName string, err error)

// Resolver resolves tokens from multiple sources in priority order
type Resolver struct {
	providers []TokenProvider
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{providers: make([]TokenProvider, 0)}
}

// NewGitHubResolver checks the flag value, then GITHUB_TOKEN, then GH_TOKEN.
func NewGitHubResolver(flagValue string) *Resolver {
	return NewResolver().
		WithFlagValue(flagValue).
		WithEnvs("GITHUB_TOKEN", "GH_TOKEN")
}

// WithFlagValue adds a flag value as the highest priority source.
func (r *Resolver) WithFlagValue(value string) *Resolver {
	r.providers = append(r.providers, func() (string, string, error) {
		if value != "" {
			return value, "flag", nil
		}
		return "", "", nil
	})
	return r
}

// WithEnv adds an environment variable as a token source
func (r *Resolver) WithEnv(envVar string) *Resolver {
	r.providers = append(r.providers, func() (string, string, error) {
		if token := strings.TrimSpace(os.Getenv(envVar)); token != "" {
			return token, envVar, nil
		}
		return "", "", nil
	})
	return r
}

// WithEnvs adds multiple environment variables as token sources (checked in order)
func (r *Resolver) WithEnvs(envVars ...string) *Resolver {
	for _, envVar := range envVars {
		r.WithEnv(envVar)
	}
	return r
}

// Resolve returns the first token found. Finding none is not an error: the
// result is anonymous and the API is used without credentials.
func (r *Resolver) Resolve() (*Result, error) {
	for _, provider := range r.providers {
		token, sourceName, err := provider()
		if err != nil {
			return nil, fmt.Errorf("token provider error: %w", err)
		}
		if token != "" {
			return &Result{
				Token:  token,
				Source: categorizeSource(sourceName),
				Name:   sourceName,
			}, nil
		}
	}

	return &Result{Source: SourceNone, Name: string(SourceNone)}, nil
}

func categorizeSource(name string) Source {
	switch {
	case name == "flag":
		return SourceFlag
	case strings.Contains(name, "TOKEN"):
		return SourceEnv
	default:
		return SourceNone
	}
}
