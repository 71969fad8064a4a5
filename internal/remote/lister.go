// Package remote enumerates the repositories and gists of a GitHub owner.
//
// Listing follows GitHub's Link header pagination until no rel="next" link
// remains and returns the items of every page, in page order, undecoded.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v82/github"
	"github.com/kb-dk/github-cloner/internal/model"
)

// DefaultPageSize is the largest page GitHub serves for list endpoints.
const DefaultPageSize = 100

// PageCursor is the pagination state of one listing.
type PageCursor struct {
	Page int
	More bool
}

// ListerOptions configures a Lister.
type ListerOptions struct {
	PageSize int

	// StrictContentType rejects responses that do not declare a UTF-8 JSON
	// media type.
	StrictContentType bool

	Logger *slog.Logger
}

// Lister fetches complete collections from the GitHub REST API.
type Lister struct {
	client   *github.Client
	pageSize int
	strict   bool
	logger   *slog.Logger
}

// NewLister creates a Lister on top of a go-github client.
func NewLister(client *github.Client, opts ListerOptions) *Lister {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Lister{
		client:   client,
		pageSize: pageSize,
		strict:   opts.StrictContentType,
		logger:   logger,
	}
}

// Endpoint returns the API path listing a collection of an owner,
// relative to the API base URL.
func Endpoint(owner model.Owner, kind model.CollectionKind) string {
	return owner.Kind.PathSegment() + "/" + url.PathEscape(owner.Name) + "/" + kind.PathSegment()
}

// ListAll returns every item of the owner's collection.
func (l *Lister) ListAll(ctx context.Context, owner model.Owner, kind model.CollectionKind) ([]model.RawItem, error) {
	return l.ListPath(ctx, Endpoint(owner, kind))
}

// ListPath pages through a list endpoint. The first request only sets
// per_page; later ones add page=N+1 for as long as the previous response
// advertised a rel="next" link and was not empty.
func (l *Lister) ListPath(ctx context.Context, path string) ([]model.RawItem, error) {
	var (
		items  = make([]model.RawItem, 0)
		cursor = PageCursor{Page: 1}
	)

	for {
		query := url.Values{}
		if cursor.Page > 1 {
			query.Set("page", strconv.Itoa(cursor.Page))
		}

		query.Set("per_page", strconv.Itoa(l.pageSize))

		page, more, err := l.fetchPage(ctx, path+"?"+query.Encode())
		if err != nil {
			return nil, err
		}

		items = append(items, page...)
		cursor.More = more && len(page) > 0

		l.logger.Debug("fetched page",
			slog.String("path", path),
			slog.Int("page", cursor.Page),
			slog.Int("items", len(page)),
			slog.Bool("more", cursor.More),
		)

		if !cursor.More {
			break
		}

		cursor.Page++
	}

	return items, nil
}

// fetchPage GETs one page and reports whether a next page was advertised.
func (l *Lister) fetchPage(ctx context.Context, rel string) ([]model.RawItem, bool, error) {
	req, err := l.client.NewRequest(http.MethodGet, rel, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request for %s: %w", rel, err)
	}

	target := req.URL.String()

	resp, err := l.client.BareDo(ctx, req)
	if err != nil {
		netErr := &NetworkError{Op: http.MethodGet, URL: target, Err: err}
		if resp != nil && resp.Response != nil {
			netErr.StatusCode = resp.StatusCode
		}

		return nil, false, netErr
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &NetworkError{Op: http.MethodGet, URL: target, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")

	if l.strict {
		if err := checkContentType(contentType); err != nil {
			return nil, false, &ProtocolError{URL: target, ContentType: contentType, Err: err}
		}
	}

	if !utf8.Valid(body) {
		return nil, false, &ProtocolError{URL: target, ContentType: contentType, Err: errors.New("body is not valid UTF-8")}
	}

	var page []model.RawItem
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, false, &ProtocolError{URL: target, ContentType: contentType, Err: fmt.Errorf("body is not a JSON array: %w", err)}
	}

	return page, resp.NextPage != 0 || hasNextLink(resp.Header.Values("Link")), nil
}

// hasNextLink reports whether a Link header carries a well-formed
// <url>; rel="next" entry, whatever its query looks like.
func hasNextLink(headers []string) bool {
	for _, header := range headers {
		for _, link := range strings.Split(header, ",") {
			segments := strings.Split(strings.TrimSpace(link), ";")
			target := strings.TrimSpace(segments[0])

			if len(segments) < 2 || !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}

			for _, param := range segments[1:] {
				key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
					continue
				}

				for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
					if strings.EqualFold(rel, "next") {
						return true
					}
				}
			}
		}
	}

	return false
}

func checkContentType(contentType string) error {
	if contentType == "" {
		return errors.New("missing content type")
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("malformed content type: %w", err)
	}

	if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
		return fmt.Errorf("not JSON: %s", mediaType)
	}

	if charset, ok := params["charset"]; ok {
		if !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "utf8") {
			return fmt.Errorf("unsupported charset %s", charset)
		}
	}

	return nil
}
