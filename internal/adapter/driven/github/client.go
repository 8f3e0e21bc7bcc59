// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// userAgent is sent on every API request, matching the identity used for the
// OAuth token exchange.
const userAgent = "GitHub-Repositories-Explorer"

// Fallback messages used when the upstream error body carries no message field.
const (
	fallbackSearchUsers = "Failed to fetch users"
	fallbackListRepos   = "Failed to fetch repositories"
	fallbackUser        = "Failed to fetch user information"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching, so repeated calls
//     with identical parameters revalidate instead of re-transferring)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429;
//     primary rate limit errors still surface to callers)
//  3. go-github (GitHub REST API client)
//
// token may be empty, yielding an unauthenticated client subject to the
// lower anonymous rate-limit ceiling.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	client.UserAgent = userAgent
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithBaseURL creates a Client with the full transport stack of
// NewClient but pointed at a non-default API base URL.
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return NewClientWithHTTPClient(rateLimitClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This is the single point of base-endpoint configuration: the
// composition root uses it when an API base override is configured, and
// tests use it to inject an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	client.UserAgent = userAgent
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// SearchUsers fetches one page of account search results.
//
// The request is built by hand rather than through gh.Search.Users so the
// query string matches the upstream contract exactly: q is omitted entirely
// when query is empty, and zero paging parameters are omitted so the API
// applies its own defaults.
func (c *Client) SearchUsers(ctx context.Context, query string, opts driven.PageOptions) (*model.SearchPage, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if opts.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}

	u := "search/users"
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	var result gh.UsersSearchResult
	resp, err := c.gh.Do(ctx, req, &result)
	if err != nil {
		return nil, normalizeError(err, resp, fallbackSearchUsers)
	}

	logRateLimit(resp, "search/users", opts.Page, len(result.Users))

	return mapSearchPage(&result), nil
}

// ListRepos fetches one page of a user's repositories, sorted per opts.Sort
// (updated when unset). Zero paging parameters are omitted from the request.
func (c *Client) ListRepos(ctx context.Context, owner string, opts driven.RepoListOptions) ([]model.Repository, error) {
	sort := opts.Sort
	if sort == "" {
		sort = model.DefaultRepoSort
	}

	listOpts := &gh.RepositoryListByUserOptions{
		Sort: string(sort),
		ListOptions: gh.ListOptions{
			PerPage: opts.PerPage,
			Page:    opts.Page,
		},
	}

	repos, resp, err := c.gh.Repositories.ListByUser(ctx, owner, listOpts)
	if err != nil {
		return nil, normalizeError(err, resp, fallbackListRepos)
	}

	logRateLimit(resp, "users/"+owner+"/repos", opts.Page, len(repos))

	mapped := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		mapped = append(mapped, mapRepository(r))
	}

	return mapped, nil
}

// AuthenticatedUser fetches the profile of the client's token owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (*model.Account, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, normalizeError(err, resp, fallbackUser)
	}

	logRateLimit(resp, "user", 0, 1)

	account := mapAccount(user)
	return &account, nil
}

// mapSearchPage converts a go-github search result to a domain SearchPage.
func mapSearchPage(result *gh.UsersSearchResult) *model.SearchPage {
	items := make([]model.Account, 0, len(result.Users))
	for _, u := range result.Users {
		items = append(items, mapAccount(u))
	}

	return &model.SearchPage{
		TotalCount:        result.GetTotal(),
		IncompleteResults: result.GetIncompleteResults(),
		Items:             items,
	}
}

// mapAccount converts a go-github User to a domain Account.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapAccount(u *gh.User) model.Account {
	return model.Account{
		ID:          u.GetID(),
		Login:       u.GetLogin(),
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		Name:        u.GetName(),
		Bio:         u.GetBio(),
		Company:     u.GetCompany(),
		Location:    u.GetLocation(),
		Type:        u.GetType(),
		SiteAdmin:   u.GetSiteAdmin(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		PublicRepos: u.GetPublicRepos(),
		CreatedAt:   u.GetCreatedAt().Time,
	}
}

// mapRepository converts a go-github Repository to a domain Repository.
func mapRepository(r *gh.Repository) model.Repository {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.Repository{
		ID:             r.GetID(),
		Name:           r.GetName(),
		FullName:       r.GetFullName(),
		OwnerLogin:     r.GetOwner().GetLogin(),
		OwnerAvatarURL: r.GetOwner().GetAvatarURL(),
		Description:    r.GetDescription(),
		HTMLURL:        r.GetHTMLURL(),
		Homepage:       r.GetHomepage(),
		Language:       r.GetLanguage(),
		Topics:         topics,
		License:        r.GetLicense().GetName(),
		Stars:          r.GetStargazersCount(),
		Forks:          r.GetForksCount(),
		Watchers:       r.GetWatchersCount(),
		OpenIssues:     r.GetOpenIssuesCount(),
		Size:           r.GetSize(),
		Fork:           r.GetFork(),
		Archived:       r.GetArchived(),
		CreatedAt:      r.GetCreatedAt().Time,
		UpdatedAt:      r.GetUpdatedAt().Time,
		PushedAt:       r.GetPushedAt().Time,
	}
}

// normalizeError converts a go-github call failure into an UpstreamError.
// The message prefers the server-supplied message field, else fallback.
// Rate limiting is detected from the typed errors, with a substring match on
// the upstream's literal wording as a compatibility net for errors
// normalized elsewhere.
func normalizeError(err error, resp *gh.Response, fallback string) *model.UpstreamError {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	var message string
	rateLimited := false

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	var errResp *gh.ErrorResponse

	switch {
	case errors.As(err, &rateErr):
		rateLimited = true
		message = rateErr.Message
	case errors.As(err, &abuseErr):
		rateLimited = true
		message = abuseErr.Message
	case errors.As(err, &errResp):
		message = errResp.Message
	}

	if message == "" {
		message = fallback
	}
	if !rateLimited {
		rateLimited = strings.Contains(message, "rate limit exceeded")
	}

	return &model.UpstreamError{
		StatusCode:  status,
		Message:     message,
		RateLimited: rateLimited,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
