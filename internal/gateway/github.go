// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/owasp-bumper/repolist/internal/domain"
	"github.com/owasp-bumper/repolist/internal/frontmatter"
)

// Fatal listing errors. Everything else the gateway returns is a
// per-repository soft failure the caller records and moves past.
var (
	ErrOrgNotFound    = errors.New("organization not found")
	ErrBadCredentials = errors.New("credentials rejected")
)

const (
	pageSize     = 100
	maxRetries   = 3
	retryBackoff = 1 * time.Second
	maxBackoff   = 30 * time.Second
	metadataFile = "index.md"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// ListOrgRepos returns every repository of the organization in host
	// listing order. Failure here is fatal to the run.
	ListOrgRepos(ctx context.Context, org string) ([]domain.RepositorySummary, error)
	// FetchParticipation returns the weekly commit series for the last 52
	// weeks, oldest first. pending is true when the host is still
	// computing the series (absent now, retryable on a future run).
	FetchParticipation(ctx context.Context, owner, repo string) (weeks []int, pending bool, err error)
	// FetchOpenPRCount returns the number of open pull requests. This is
	// the authoritative PR figure; the listing's open-issues count bundles
	// PRs in and is left untouched.
	FetchOpenPRCount(ctx context.Context, owner, repo string) (int, error)
	// FetchProjectMetadata reads and parses index.md front matter from the
	// given ref. A missing file or an unusable header returns (nil, nil):
	// most repositories have no metadata and that is not an error.
	FetchProjectMetadata(ctx context.Context, owner, repo, ref string) (*domain.ProjectMetadata, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// It speaks REST for listing and enrichment and, when authenticated,
// GraphQL for the open-PR count (one point instead of a REST probe).
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client // nil when unauthenticated
	governor      *Governor
	logger        *logrus.Logger
}

// NewGitHubGateway creates a gateway. The token is optional: without one
// the client runs unauthenticated against the lower rate-limit ceiling,
// but the code paths are identical.
func NewGitHubGateway(token string, governor *Governor, logger *logrus.Logger) (Fetcher, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	gw := &GitHubGateway{governor: governor, logger: logger}
	if token == "" {
		httpClient := &http.Client{Transport: waiter}
		gw.restClient = github.NewClient(httpClient)
		return gw, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: ts,
		},
	}
	gw.restClient = github.NewClient(httpClient)
	gw.graphqlClient = githubv4.NewClient(httpClient)
	return gw, nil
}

func (g *GitHubGateway) ListOrgRepos(ctx context.Context, org string) ([]domain.RepositorySummary, error) {
	opts := &github.RepositoryListByOrgOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	var summaries []domain.RepositorySummary
	for {
		repos, resp, err := g.listPage(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range repos {
			summaries = append(summaries, summaryFromRepo(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithField("page", opts.Page).Debug("Fetching next page of repositories")
	}
	g.logger.WithFields(logrus.Fields{"org": org, "repos": len(summaries)}).Info("Completed repository listing")
	return summaries, nil
}

// listPage fetches one listing page, retrying transient failures a bounded
// number of times before giving up. 404 and 401 are terminal immediately.
func (g *GitHubGateway) listPage(ctx context.Context, org string, opts *github.RepositoryListByOrgOptions) ([]*github.Repository, *github.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		repos, resp, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
		g.governor.Record(resp)
		if err == nil {
			return repos, resp, nil
		}

		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) {
			switch errResp.Response.StatusCode {
			case http.StatusNotFound:
				return nil, nil, fmt.Errorf("%w: %s", ErrOrgNotFound, org)
			case http.StatusUnauthorized:
				return nil, nil, fmt.Errorf("%w: %v", ErrBadCredentials, err)
			}
		}
		lastErr = err
		if !isTransient(err) || attempt == maxRetries-1 {
			break
		}

		backoff := retryBackoff << attempt
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		g.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"backoff": backoff,
		}).Warnf("Transient error listing repositories: %v", err)
		if serr := sleepCtx(ctx, backoff); serr != nil {
			return nil, nil, serr
		}
	}
	return nil, nil, fmt.Errorf("failed to list repositories for %s: %w", org, lastErr)
}

// isTransient reports whether an error is worth a bounded retry: network
// failures, 5xx responses, and primary rate-limit rejections.
func isTransient(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Response.StatusCode >= http.StatusInternalServerError
	}
	// Anything that never produced an HTTP status is a network-level
	// failure.
	return true
}

func (g *GitHubGateway) FetchParticipation(ctx context.Context, owner, repo string) ([]int, bool, error) {
	participation, resp, err := g.restClient.Repositories.ListParticipation(ctx, owner, repo)
	g.governor.Record(resp)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			// Host is still computing the series.
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to fetch participation for %s/%s: %w", owner, repo, err)
	}
	if participation == nil || len(participation.All) == 0 {
		return nil, false, nil
	}
	return participation.All, false, nil
}

// openPRCountQuery asks for the open-PR total of one repository.
type openPRCountQuery struct {
	Repository struct {
		PullRequests struct {
			TotalCount int
		} `graphql:"pullRequests(states: OPEN)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (g *GitHubGateway) FetchOpenPRCount(ctx context.Context, owner, repo string) (int, error) {
	if g.graphqlClient != nil {
		var q openPRCountQuery
		variables := map[string]interface{}{
			"owner": githubv4.String(owner),
			"name":  githubv4.String(repo),
		}
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return 0, fmt.Errorf("failed to query open PR count for %s/%s: %w", owner, repo, err)
		}
		return q.Repository.PullRequests.TotalCount, nil
	}

	// Unauthenticated: probe with a single-item page and read the total
	// from the last-page number the host reports.
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 1},
	}
	prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
	g.governor.Record(resp)
	if err != nil {
		return 0, fmt.Errorf("failed to list open PRs for %s/%s: %w", owner, repo, err)
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(prs), nil
}

func (g *GitHubGateway) FetchProjectMetadata(ctx context.Context, owner, repo, ref string) (*domain.ProjectMetadata, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	file, _, resp, err := g.restClient.Repositories.GetContents(ctx, owner, repo, metadataFile, opts)
	g.governor.Record(resp)
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response.StatusCode == http.StatusNotFound {
			// The common case: no index.md at all.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch %s from %s/%s: %w", metadataFile, owner, repo, err)
	}
	if file == nil {
		return nil, nil
	}

	content, err := file.GetContent()
	if err != nil {
		g.logger.WithField("repo", repo).Debugf("Undecodable %s content: %v", metadataFile, err)
		return nil, nil
	}
	meta := frontmatter.Parse(content)
	if meta.IsZero() {
		return nil, nil
	}
	return &domain.ProjectMetadata{
		Title:   meta.Title,
		Level:   meta.Level,
		Pitch:   meta.Pitch,
		Type:    meta.Type,
		Region:  meta.Region,
		Country: meta.Country,
		Tags:    meta.Tags,
	}, nil
}

func summaryFromRepo(r *github.Repository) domain.RepositorySummary {
	return domain.RepositorySummary{
		Name:          r.GetName(),
		Owner:         r.GetOwner().GetLogin(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Language:      r.GetLanguage(),
		Archived:      r.GetArchived(),
		DefaultBranch: r.GetDefaultBranch(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
	}
}
