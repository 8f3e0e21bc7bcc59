package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// DefaultFeedPageSize is the page size used when none is requested.
const DefaultFeedPageSize = 10

// FeedParams identifies one repository feed: the owner whose repositories
// are listed, the sort order, and the page size. Changing any of the three
// discards all fetched pages and restarts from page 1.
type FeedParams struct {
	Owner   string
	Sort    model.RepoSort
	PerPage int
}

// normalized fills in the sort and page-size defaults.
func (p FeedParams) normalized() FeedParams {
	if p.Sort == "" {
		p.Sort = model.DefaultRepoSort
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultFeedPageSize
	}
	return p
}

// FeedSnapshot is a point-in-time view of the feed handed to callers.
type FeedSnapshot struct {
	Params      FeedParams
	Items       []model.Repository
	HasNextPage bool
	Fetching    bool
	Err         error
}

// RepoFeed is the infinite repository list: an expanding ordered sequence of
// fetched pages, concatenated for display.
//
// The continuation rule is deliberate and total-count-blind: the next page
// number is set iff the fetched page length equals PerPage, so a short page
// ends the feed even if the upstream claims more data, and a final page that
// exactly fills PerPage causes one extra empty-result request.
//
// Each parameter reset bumps a generation counter; a fetch that completes
// under a stale generation is discarded, so only the latest parameters'
// results are ever visible.
type RepoFeed struct {
	provider *GitHubClientProvider

	mu         sync.Mutex
	params     FeedParams
	pages      [][]model.Repository
	nextPage   int // 0 means exhausted
	fetching   bool
	lastErr    error
	generation uint64
}

// NewRepoFeed creates an inactive feed; the first Activate call starts it.
func NewRepoFeed(provider *GitHubClientProvider) *RepoFeed {
	return &RepoFeed{provider: provider}
}

// Activate makes params the feed's active parameters, resetting to page 1
// and discarding prior pages when they differ from the current ones, and
// fetches the first page if the feed holds none. It returns the resulting
// snapshot; the error (also carried in the snapshot) is the first page's
// fetch failure, if any.
func (f *RepoFeed) Activate(ctx context.Context, params FeedParams) (FeedSnapshot, error) {
	params = params.normalized()

	f.mu.Lock()
	if params != f.params {
		f.resetLocked(params)
	}
	needsFirstPage := len(f.pages) == 0 && f.nextPage == 1 && !f.fetching && f.lastErr == nil
	f.mu.Unlock()

	var err error
	if needsFirstPage {
		err = f.advance(ctx)
	}

	return f.Snapshot(), err
}

// FetchNext fetches the next page of the active feed. It is a no-op when a
// fetch is already in flight or no continuation exists.
func (f *RepoFeed) FetchNext(ctx context.Context) (FeedSnapshot, error) {
	err := f.advance(ctx)
	return f.Snapshot(), err
}

// Retry clears the feed's error state so the failed page can be refetched.
func (f *RepoFeed) Retry(ctx context.Context) (FeedSnapshot, error) {
	f.mu.Lock()
	f.lastErr = nil
	f.mu.Unlock()

	err := f.advance(ctx)
	return f.Snapshot(), err
}

// Snapshot returns the flattened items fetched so far, in fetch order,
// along with the continuation and status flags.
func (f *RepoFeed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	var total int
	for _, page := range f.pages {
		total += len(page)
	}

	items := make([]model.Repository, 0, total)
	for _, page := range f.pages {
		items = append(items, page...)
	}

	return FeedSnapshot{
		Params:      f.params,
		Items:       items,
		HasNextPage: f.nextPage != 0,
		Fetching:    f.fetching,
		Err:         f.lastErr,
	}
}

// resetLocked activates params and discards all feed state. Callers hold f.mu.
func (f *RepoFeed) resetLocked(params FeedParams) {
	f.params = params
	f.pages = nil
	f.nextPage = 1
	f.fetching = false
	f.lastErr = nil
	f.generation++
}

// advance fetches the page at the continuation marker. The lock is released
// for the duration of the network call; a reset that happens meanwhile
// bumps the generation, and the completion is then discarded.
func (f *RepoFeed) advance(ctx context.Context) error {
	f.mu.Lock()
	if f.fetching || f.nextPage == 0 {
		f.mu.Unlock()
		return nil
	}
	f.fetching = true
	generation := f.generation
	page := f.nextPage
	params := f.params
	f.mu.Unlock()

	client := f.provider.Get()
	repos, err := client.ListRepos(ctx, params.Owner, driven.RepoListOptions{
		Sort:    params.Sort,
		PerPage: params.PerPage,
		Page:    page,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation {
		// Superseded by a parameter change; the new feed owns the state now.
		return nil
	}

	f.fetching = false

	if err != nil {
		f.lastErr = err
		return err
	}

	f.lastErr = nil
	f.pages = append(f.pages, repos)
	if len(repos) == params.PerPage {
		f.nextPage = page + 1
	} else {
		f.nextPage = 0
	}

	return nil
}
