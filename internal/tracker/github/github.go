// Package github implements tracker.Tracker on top of the GitHub issues API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker"
)

const name = "github"

// ErrMissingToken is returned by New when no credential is configured.
var ErrMissingToken = errors.New("github token is not set")

// Options configures the GitHub gateway.
type Options struct {
	Token   string        // personal access token or app token with issues:write
	Owner   string        // repository owner (ex: psykzz)
	Repo    string        // repository name (ex: avalon-hideout-mapper)
	BaseURL string        // optional API base URL, defaults to https://api.github.com/
	Timeout time.Duration // bound for each call, 0 = no bound

	HTTPClient *http.Client // optional, for tests
}

// Gateway creates issues in a single repository.
type Gateway struct {
	client  *gh.Client
	owner   string
	repo    string
	timeout time.Duration
}

var _ tracker.Tracker = (*Gateway)(nil)

// New builds a gateway bound to Owner/Repo.
func New(opts Options) (*Gateway, error) {
	if opts.Token == "" {
		return nil, ErrMissingToken
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required, got %q/%q", opts.Owner, opts.Repo)
	}

	client := gh.NewClient(opts.HTTPClient).WithAuthToken(opts.Token)

	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", opts.BaseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}

	return &Gateway{
		client:  client,
		owner:   opts.Owner,
		repo:    opts.Repo,
		timeout: opts.Timeout,
	}, nil
}

// Repository returns "owner/repo".
func (g *Gateway) Repository() string {
	return g.owner + "/" + g.repo
}

// CreateIssue opens one issue. There is no retry and no idempotency key:
// submitting the same report twice opens two issues.
func (g *Gateway) CreateIssue(ctx context.Context, issue domain.Issue) (domain.IssueRef, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}

	created, resp, err := g.client.Issues.Create(ctx, g.owner, g.repo, &gh.IssueRequest{
		Title:  gh.String(issue.Title),
		Body:   gh.String(issue.Body),
		Labels: &labels,
	})
	if err != nil {
		gerr := &tracker.GatewayError{Tracker: name, Err: err}
		if resp != nil {
			gerr.StatusCode = resp.StatusCode
		}
		return domain.IssueRef{}, gerr
	}

	if created.GetNumber() == 0 {
		return domain.IssueRef{}, &tracker.GatewayError{
			Tracker: name,
			Err:     errors.New("response did not contain an issue number"),
		}
	}

	return domain.IssueRef{
		Number: created.GetNumber(),
		URL:    created.GetHTMLURL(),
	}, nil
}
