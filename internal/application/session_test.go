package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghexplorer/internal/application"
	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

func TestSessionService_LoginPersistsTokenAndUserTogether(t *testing.T) {
	store := &memSessionStore{}
	svc := application.NewSessionService(store)
	ctx := context.Background()

	require.False(t, svc.IsAuthenticated(ctx))
	assert.Equal(t, "", svc.Token(ctx))

	err := svc.Login(ctx, "gho_abc123", model.Account{ID: 1, Login: "octocat"})
	require.NoError(t, err)

	assert.True(t, svc.IsAuthenticated(ctx))
	assert.Equal(t, "gho_abc123", svc.Token(ctx))

	sess, err := svc.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "gho_abc123", sess.Token)
	assert.Equal(t, "octocat", sess.User.Login)
}

func TestSessionService_LogoutClearsBoth(t *testing.T) {
	store := &memSessionStore{}
	svc := application.NewSessionService(store)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "gho_abc123", model.Account{Login: "octocat"}))
	require.NoError(t, svc.Logout(ctx))

	assert.False(t, svc.IsAuthenticated(ctx))
	assert.Equal(t, "", svc.Token(ctx))

	sess, err := svc.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionService_LoginFailureDoesNotNotify(t *testing.T) {
	store := &memSessionStore{setErr: errors.New("disk full")}
	svc := application.NewSessionService(store)

	events, cancel := svc.Subscribe()
	defer cancel()

	err := svc.Login(context.Background(), "gho_abc123", model.Account{Login: "octocat"})
	require.Error(t, err)

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after failed login: %+v", ev)
	default:
	}
}

func TestSessionService_SubscribersObserveLoginAndLogout(t *testing.T) {
	store := &memSessionStore{}
	svc := application.NewSessionService(store)
	ctx := context.Background()

	events, cancel := svc.Subscribe()
	defer cancel()

	require.NoError(t, svc.Login(ctx, "gho_abc123", model.Account{Login: "octocat"}))
	ev := <-events
	assert.True(t, ev.Authenticated)

	require.NoError(t, svc.Logout(ctx))
	ev = <-events
	assert.False(t, ev.Authenticated)
}

func TestSessionService_SlowSubscriberSeesLatestEvent(t *testing.T) {
	store := &memSessionStore{}
	svc := application.NewSessionService(store)
	ctx := context.Background()

	// Never drained between mutations: the buffered event is replaced, not
	// blocked on.
	events, cancel := svc.Subscribe()
	defer cancel()

	require.NoError(t, svc.Login(ctx, "gho_abc123", model.Account{Login: "octocat"}))
	require.NoError(t, svc.Logout(ctx))

	ev := <-events
	assert.False(t, ev.Authenticated, "slow subscriber should observe the most recent event")
}

func TestSessionService_CancelStopsDelivery(t *testing.T) {
	store := &memSessionStore{}
	svc := application.NewSessionService(store)
	ctx := context.Background()

	events, cancel := svc.Subscribe()
	cancel()

	require.NoError(t, svc.Login(ctx, "gho_abc123", model.Account{Login: "octocat"}))

	// The channel is closed by cancel; no event may arrive afterwards.
	ev, ok := <-events
	assert.False(t, ok, "expected closed channel, got event %+v", ev)
}
