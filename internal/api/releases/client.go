package releases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v52/github"

	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	"github.com/oshokin/release-manifest/internal/version"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com/"

var (
	// ErrInvalidRepository is returned for an identifier that is not "owner/name".
	ErrInvalidRepository = errors.New("repository must be in owner/name form")
	// ErrMissingField is returned when a release or asset lacks a required field.
	ErrMissingField = errors.New("required field missing")
)

// Fetcher returns one page of upstream releases.
type Fetcher interface {
	FetchPage(ctx context.Context, page, perPage int) ([]manifest.UpstreamRelease, error)
}

// Options configure a Client.
type Options struct {
	// Repository is the "owner/name" identifier.
	Repository string
	// Token is an optional access token sent as a bearer credential.
	Token string
	// BaseURL overrides DefaultBaseURL, e.g. for GitHub Enterprise or tests.
	BaseURL string
	// Timeout bounds each HTTP request; zero means no timeout.
	Timeout time.Duration
	// Transport is the underlying round tripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client lists releases of a single repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient builds a Client for the repository in opts.
func NewClient(opts *Options) (*Client, error) {
	owner, repo, err := SplitRepository(opts.Repository)
	if err != nil {
		return nil, err
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if opts.Token != "" {
		transport = &bearerTransport{token: opts.Token, base: transport}
	}

	gh := github.NewClient(&http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	})
	gh.UserAgent = "release-manifest/" + version.Short()

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	gh.BaseURL, err = url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Client{
		gh:    gh,
		owner: owner,
		repo:  repo,
	}, nil
}

// SplitRepository parses an "owner/name" identifier.
func SplitRepository(repository string) (string, string, error) {
	owner, repo, found := strings.Cut(strings.TrimSpace(repository), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("%q: %w", repository, ErrInvalidRepository)
	}

	return owner, repo, nil
}

// FetchPage issues a single GET for the given page.
// Any non-success status is returned as an error; there is no retry.
func (c *Client) FetchPage(ctx context.Context, page, perPage int) ([]manifest.UpstreamRelease, error) {
	logger.DebugKV(ctx, "Requesting releases page", "page", page, "per_page", perPage)

	ghReleases, _, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, &github.ListOptions{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list releases of %s/%s (page %d): %w", c.owner, c.repo, page, err)
	}

	result := make([]manifest.UpstreamRelease, 0, len(ghReleases))

	for i, ghRelease := range ghReleases {
		release, err := toUpstream(ghRelease)
		if err != nil {
			return nil, fmt.Errorf("page %d, release %d: %w", page, i, err)
		}

		result = append(result, release)
	}

	return result, nil
}

// toUpstream copies the fields the manifest needs. Only the display name may
// be absent; every other field must be present in the response.
func toUpstream(r *github.RepositoryRelease) (manifest.UpstreamRelease, error) {
	if r == nil {
		return manifest.UpstreamRelease{}, fmt.Errorf("release: %w", ErrMissingField)
	}

	name := r.GetName()
	if name == "" && r.TagName == nil {
		return manifest.UpstreamRelease{}, fmt.Errorf("tag_name: %w", ErrMissingField)
	}

	switch {
	case r.Prerelease == nil:
		return manifest.UpstreamRelease{}, fmt.Errorf("prerelease: %w", ErrMissingField)
	case r.Draft == nil:
		return manifest.UpstreamRelease{}, fmt.Errorf("draft: %w", ErrMissingField)
	case r.HTMLURL == nil:
		return manifest.UpstreamRelease{}, fmt.Errorf("html_url: %w", ErrMissingField)
	case r.Assets == nil:
		return manifest.UpstreamRelease{}, fmt.Errorf("assets: %w", ErrMissingField)
	}

	assets := make([]manifest.UpstreamAsset, 0, len(r.Assets))

	for i, a := range r.Assets {
		if a == nil || a.Name == nil {
			return manifest.UpstreamRelease{}, fmt.Errorf("assets[%d].name: %w", i, ErrMissingField)
		}

		if a.BrowserDownloadURL == nil {
			return manifest.UpstreamRelease{}, fmt.Errorf("assets[%d].browser_download_url: %w", i, ErrMissingField)
		}

		assets = append(assets, manifest.UpstreamAsset{
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
		})
	}

	return manifest.UpstreamRelease{
		Name:       name,
		TagName:    r.GetTagName(),
		Prerelease: r.GetPrerelease(),
		Draft:      r.GetDraft(),
		HTMLURL:    r.GetHTMLURL(),
		Assets:     assets,
	}, nil
}

// bearerTransport adds the access token to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.token)

	return t.base.RoundTrip(cloned)
}
