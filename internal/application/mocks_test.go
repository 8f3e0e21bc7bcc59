package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// --- Mock implementations ---

type listReposCall struct {
	Owner string
	Opts  driven.RepoListOptions
}

type mockGitHubClient struct {
	mu        sync.Mutex
	listCalls []listReposCall

	searchUsers func(ctx context.Context, query string, opts driven.PageOptions) (*model.SearchPage, error)
	listRepos   func(ctx context.Context, owner string, opts driven.RepoListOptions) ([]model.Repository, error)
	authUser    func(ctx context.Context) (*model.Account, error)
}

func (m *mockGitHubClient) SearchUsers(ctx context.Context, query string, opts driven.PageOptions) (*model.SearchPage, error) {
	if m.searchUsers == nil {
		return &model.SearchPage{Items: []model.Account{}}, nil
	}
	return m.searchUsers(ctx, query, opts)
}

func (m *mockGitHubClient) ListRepos(ctx context.Context, owner string, opts driven.RepoListOptions) ([]model.Repository, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, listReposCall{Owner: owner, Opts: opts})
	m.mu.Unlock()

	if m.listRepos == nil {
		return []model.Repository{}, nil
	}
	return m.listRepos(ctx, owner, opts)
}

func (m *mockGitHubClient) AuthenticatedUser(ctx context.Context) (*model.Account, error) {
	if m.authUser == nil {
		return &model.Account{Login: "testuser"}, nil
	}
	return m.authUser(ctx)
}

func (m *mockGitHubClient) calls() []listReposCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]listReposCall(nil), m.listCalls...)
}

// memSessionStore is an in-memory SessionStore for application tests.
type memSessionStore struct {
	mu      sync.Mutex
	session *model.Session
	setErr  error
}

func (s *memSessionStore) Get(_ context.Context) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

func (s *memSessionStore) Set(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.session = &sess
	return nil
}

func (s *memSessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// repoPage builds n repositories named base-1..base-n for feed tests.
func repoPage(base string, n int) []model.Repository {
	repos := make([]model.Repository, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("%s-%d", base, i)
		repos = append(repos, model.Repository{
			ID:       int64(i),
			Name:     name,
			FullName: "owner/" + name,
			Topics:   []string{},
		})
	}
	return repos
}
