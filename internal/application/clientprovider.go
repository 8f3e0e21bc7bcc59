package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// ClientFactory builds a GitHub client for the given access token. An empty
// token yields an unauthenticated client. The composition root supplies a
// factory bound to the configured API base URL.
type ClientFactory func(token string) driven.GitHubClient

// GitHubClientProvider enables runtime hot-swap of the GitHub client. It
// holds a mutex-protected reference to the current client, rebuilt through
// the factory whenever the session changes, so a login takes effect (and
// raises the rate-limit ceiling) without restarting the application.
type GitHubClientProvider struct {
	mu      sync.RWMutex
	factory ClientFactory
	client  driven.GitHubClient
}

// NewGitHubClientProvider creates a provider holding a client built for
// initialToken (usually "" at startup: anonymous until a login happens).
func NewGitHubClientProvider(factory ClientFactory, initialToken string) *GitHubClientProvider {
	return &GitHubClientProvider{
		factory: factory,
		client:  factory(initialToken),
	}
}

// Get returns the current GitHub client.
func (p *GitHubClientProvider) Get() driven.GitHubClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Swap replaces the current client with one built for token. The next caller
// of Get() receives the new client.
func (p *GitHubClientProvider) Swap(token string) {
	client := p.factory(token)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
}

// WatchSession rebuilds the client on every session change until ctx is
// cancelled. Intended to run as a goroutine from the composition root.
func (p *GitHubClientProvider) WatchSession(ctx context.Context, sessions *SessionService) {
	events, cancel := sessions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.Swap(sessions.Token(ctx))
			slog.Info("github client swapped", "authenticated", ev.Authenticated)
		}
	}
}
