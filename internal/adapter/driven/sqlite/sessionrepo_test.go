package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

func TestSessionRepo_GetEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)

	sess, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	created := time.Date(2011, 1, 25, 18, 44, 36, 0, time.UTC)
	err := repo.Set(ctx, model.Session{
		Token: "gho_abc123",
		User: model.Account{
			ID:          1,
			Login:       "octocat",
			Name:        "The Octocat",
			AvatarURL:   "https://example.com/a.png",
			Followers:   100,
			PublicRepos: 8,
			CreatedAt:   created,
		},
	})
	require.NoError(t, err)

	sess, err := repo.Get(ctx)

	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "gho_abc123", sess.Token)
	assert.Equal(t, "octocat", sess.User.Login)
	assert.Equal(t, "The Octocat", sess.User.Name)
	assert.Equal(t, 100, sess.User.Followers)
	assert.True(t, created.Equal(sess.User.CreatedAt))
}

// The table holds a single row: a second Set replaces the first session
// rather than accumulating.
func TestSessionRepo_SetReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.Session{Token: "gho_first", User: model.Account{Login: "first"}}))
	require.NoError(t, repo.Set(ctx, model.Session{Token: "gho_second", User: model.Account{Login: "second"}}))

	sess, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "gho_second", sess.Token)
	assert.Equal(t, "second", sess.User.Login)

	var count int
	require.NoError(t, db.Reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSessionRepo_Clear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.Session{Token: "gho_abc123", User: model.Account{Login: "octocat"}}))
	require.NoError(t, repo.Clear(ctx))

	sess, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionRepo_ClearAbsentIsNoError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)

	assert.NoError(t, repo.Clear(context.Background()))
}

// A row whose stored profile cannot be deserialized is treated as no
// session: a token without a readable profile would break the
// both-or-neither invariant.
func TestSessionRepo_UnreadableProfileIsNoSession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_json) VALUES (1, 'gho_abc123', 'not json')`)
	require.NoError(t, err)

	sess, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
