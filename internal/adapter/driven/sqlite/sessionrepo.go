package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port.
// The sessions table holds at most one row (id = 1): token and serialized
// profile land in a single statement, so readers never see a session with
// only one of the two set.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// accountJSON is the storage representation of the authenticated profile.
type accountJSON struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type"`
	SiteAdmin   bool   `json:"site_admin"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Get returns the stored session. It returns (nil, nil) when no session row
// exists, or when the stored profile JSON cannot be deserialized -- a token
// without a readable profile would break the both-or-neither invariant, so
// such a row is treated as no session.
func (r *SessionRepo) Get(ctx context.Context) (*model.Session, error) {
	const query = `SELECT token, user_json FROM sessions WHERE id = 1`

	var token, userJSON string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var stored accountJSON
	if err := json.Unmarshal([]byte(userJSON), &stored); err != nil {
		slog.Warn("stored session profile is unreadable, treating as no session", "error", err)
		return nil, nil
	}

	return &model.Session{
		Token: token,
		User:  fromAccountJSON(stored),
	}, nil
}

// Set stores or replaces the session in a single INSERT OR REPLACE.
func (r *SessionRepo) Set(ctx context.Context, s model.Session) error {
	userJSON, err := json.Marshal(toAccountJSON(s.User))
	if err != nil {
		return fmt.Errorf("serialize session profile: %w", err)
	}

	const query = `INSERT OR REPLACE INTO sessions (id, token, user_json, updated_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, s.Token, string(userJSON)); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Clear removes the session row. Clearing an absent session is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE id = 1`
	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func toAccountJSON(a model.Account) accountJSON {
	stored := accountJSON{
		ID:          a.ID,
		Login:       a.Login,
		AvatarURL:   a.AvatarURL,
		HTMLURL:     a.HTMLURL,
		Name:        a.Name,
		Bio:         a.Bio,
		Company:     a.Company,
		Location:    a.Location,
		Type:        a.Type,
		SiteAdmin:   a.SiteAdmin,
		Followers:   a.Followers,
		Following:   a.Following,
		PublicRepos: a.PublicRepos,
	}
	if !a.CreatedAt.IsZero() {
		stored.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return stored
}

func fromAccountJSON(stored accountJSON) model.Account {
	account := model.Account{
		ID:          stored.ID,
		Login:       stored.Login,
		AvatarURL:   stored.AvatarURL,
		HTMLURL:     stored.HTMLURL,
		Name:        stored.Name,
		Bio:         stored.Bio,
		Company:     stored.Company,
		Location:    stored.Location,
		Type:        stored.Type,
		SiteAdmin:   stored.SiteAdmin,
		Followers:   stored.Followers,
		Following:   stored.Following,
		PublicRepos: stored.PublicRepos,
	}
	if stored.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, stored.CreatedAt); err == nil {
			account.CreatedAt = t
		}
	}
	return account
}
