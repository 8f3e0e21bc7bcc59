package driven

import (
	"context"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

// SessionStore is the driven port for persisted session state. The token and
// user are stored as one unit: Set replaces both in a single write and Clear
// removes both, so readers never observe a half-set session.
type SessionStore interface {
	// Get returns the stored session, or nil when no session exists or the
	// stored profile cannot be deserialized.
	Get(ctx context.Context) (*model.Session, error)
	Set(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}
