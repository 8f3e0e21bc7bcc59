package driven

import (
	"context"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

// PageOptions carries paging parameters for list calls. Zero values are
// omitted from the request entirely so the upstream API applies its own
// defaults rather than receiving an explicit zero.
type PageOptions struct {
	PerPage int
	Page    int
}

// RepoListOptions carries the parameters of a repository list call.
type RepoListOptions struct {
	// Sort is one of updated, created, pushed, or full_name.
	// The empty value is sent as updated.
	Sort    model.RepoSort
	PerPage int
	Page    int
}

// GitHubClient is the driven port for the GitHub REST API. All failures are
// returned as *model.UpstreamError with a normalized message.
type GitHubClient interface {
	// SearchUsers fetches one page of account search results. The q
	// parameter is omitted from the request when query is empty.
	SearchUsers(ctx context.Context, query string, opts PageOptions) (*model.SearchPage, error)
	// ListRepos fetches one page of a user's repositories.
	ListRepos(ctx context.Context, owner string, opts RepoListOptions) ([]model.Repository, error)
	// AuthenticatedUser fetches the profile of the token's owner.
	AuthenticatedUser(ctx context.Context) (*model.Account, error)
}
