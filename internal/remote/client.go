package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"
	"github.com/kb-dk/github-cloner/internal/application"
	"golang.org/x/oauth2"
)

// ClientOptions configures the GitHub API client.
type ClientOptions struct {
	// BaseURL of the REST API, e.g. https://api.github.com/ or a GHES
	// https://ghe.example.com/api/v3/.
	BaseURL string

	// Token is optional; without it requests are anonymous.
	Token string

	Timeout time.Duration
}

// NewGitHubClient creates a go-github client for the given options. When a
// token is set requests are authenticated with a static oauth2 token source.
func NewGitHubClient(ctx context.Context, opts ClientOptions) (*github.Client, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}

	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = opts.Timeout
	}

	client := github.NewClient(httpClient)
	client.UserAgent = application.AppName + "/" + application.Version

	if opts.BaseURL != "" {
		base, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}

		client.BaseURL = base
	}

	return client, nil
}

// parseBaseURL makes sure the URL ends in a slash, which go-github requires
// to resolve relative endpoints.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing scheme or host", raw)
	}

	return u, nil
}
