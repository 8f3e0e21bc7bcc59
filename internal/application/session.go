package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// SessionEvent is broadcast to subscribers after every session mutation.
// It carries only the new authenticated flag; subscribers re-read the store
// for the session itself rather than caching values across the notification.
type SessionEvent struct {
	Authenticated bool
}

// SessionService wraps the persisted session store with an explicit
// subscribe/notify contract so independent components (the client provider,
// the session endpoint) observe login and logout without sharing in-memory
// state.
type SessionService struct {
	store driven.SessionStore

	mu     sync.Mutex
	subs   map[int]chan SessionEvent
	nextID int
}

// NewSessionService creates a SessionService backed by the given store.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{
		store: store,
		subs:  make(map[int]chan SessionEvent),
	}
}

// Session returns the current persisted session, or nil when logged out.
func (s *SessionService) Session(ctx context.Context) (*model.Session, error) {
	return s.store.Get(ctx)
}

// Token returns the persisted access token, or "" when logged out.
func (s *SessionService) Token(ctx context.Context) string {
	sess, err := s.store.Get(ctx)
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

// User returns the persisted authenticated profile, or nil when logged out.
func (s *SessionService) User(ctx context.Context) *model.Account {
	sess, err := s.store.Get(ctx)
	if err != nil || sess == nil {
		return nil
	}
	return &sess.User
}

// IsAuthenticated reports whether a session with a non-empty token exists.
func (s *SessionService) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Login persists token and user together and notifies subscribers.
func (s *SessionService) Login(ctx context.Context, token string, user model.Account) error {
	if err := s.store.Set(ctx, model.Session{Token: token, User: user}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.notify(SessionEvent{Authenticated: true})
	return nil
}

// Logout clears the persisted session and notifies subscribers.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.notify(SessionEvent{Authenticated: false})
	return nil
}

// Subscribe registers a listener for session changes. The returned cancel
// function must be called when the subscriber's lifecycle ends; the channel
// is closed by cancel. Events are delivered best-effort: a subscriber that
// has not drained its previous event only misses the intermediate
// notification, never the store state it would re-read.
func (s *SessionService) Subscribe() (<-chan SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan SessionEvent, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// notify delivers ev to every subscriber without blocking. A full buffer is
// drained first so the subscriber always observes the most recent event.
func (s *SessionService) notify(ev SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
