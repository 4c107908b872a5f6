// Package release resolves the TFLint version to install.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
)

const (
	// DefaultAPIURL is the public GitHub REST API.
	DefaultAPIURL = "https://api.github.com"
	// DefaultOwner and DefaultRepo locate the TFLint repository.
	DefaultOwner = "terraform-linters"
	DefaultRepo  = "tflint"
	// Latest selects the most recent published release.
	Latest = "latest"
)

// HTTPClient is the minimal HTTP client the resolver needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UpstreamMetadataError reports a failed latest-release lookup.
type UpstreamMetadataError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamMetadataError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("resolve latest tflint release from %s: unexpected status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("resolve latest tflint release from %s: %v", e.URL, e.Err)
}

func (e *UpstreamMetadataError) Unwrap() error {
	return e.Err
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithAPIURL sets the API base URL (GitHub Enterprise, tests).
func WithAPIURL(url string) Option {
	return func(r *Resolver) {
		if url != "" {
			r.apiURL = strings.TrimRight(url, "/")
		}
	}
}

// WithRepository overrides the owner/repo the releases are read from.
func WithRepository(owner, repo string) Option {
	return func(r *Resolver) {
		if owner != "" && repo != "" {
			r.owner = owner
			r.repo = repo
		}
	}
}

// WithToken authenticates API requests. An empty token sends none.
func WithToken(token string) Option {
	return func(r *Resolver) {
		r.token = token
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver turns a requested version into a concrete release tag.
type Resolver struct {
	client HTTPClient
	apiURL string
	owner  string
	repo   string
	token  string
	logger *logrus.Entry
}

// NewResolver creates a Resolver for terraform-linters/tflint on api.github.com.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client: http.DefaultClient,
		apiURL: DefaultAPIURL,
		owner:  DefaultOwner,
		repo:   DefaultRepo,
		logger: logrus.WithField("component", "release"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

// Resolve returns requested unchanged unless it is empty or "latest", in which
// case the latest release tag is fetched with a single request.
func (r *Resolver) Resolve(ctx context.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" && requested != Latest {
		return requested, nil
	}

	r.logger.Debug("Requesting for [latest] version ...")

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", r.apiURL, r.owner, r.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &UpstreamMetadataError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "setup-tflint/1.0")
	if r.token != "" {
		r.logger.Debug("Using token authentication for the releases API")
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &UpstreamMetadataError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamMetadataError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", &UpstreamMetadataError{URL: url, Err: fmt.Errorf("decode release: %w", err)}
	}

	version := strings.TrimSpace(release.TagName)
	if version == "" {
		version = strings.TrimSpace(release.Name)
	}
	if version == "" {
		return "", &UpstreamMetadataError{URL: url, Err: fmt.Errorf("release has no tag")}
	}
	if !semver.IsValid(version) {
		return "", &UpstreamMetadataError{URL: url, Err: fmt.Errorf("release tag %q is not a version", version)}
	}

	r.logger.WithField("version", version).Debug("... version resolved")
	return version, nil
}
