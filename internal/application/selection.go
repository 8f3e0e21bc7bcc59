package application

import (
	"sync"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

// SelectionState tracks which single detail panel target is open. The held
// value is a tagged variant, so selecting an account while a repository is
// open (or vice versa) replaces the whole selection; both slots filled is
// unrepresentable. Not persisted: a process restart clears it, like a full
// page reload.
type SelectionState struct {
	mu      sync.Mutex
	current model.Selection
}

// NewSelectionState creates an empty SelectionState.
func NewSelectionState() *SelectionState {
	return &SelectionState{current: model.NoSelection()}
}

// SelectAccount opens the detail for the given account, closing any
// repository detail.
func (s *SelectionState) SelectAccount(a model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = model.SelectAccount(a)
}

// SelectRepository opens the detail for the given repository, closing any
// account detail.
func (s *SelectionState) SelectRepository(r model.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = model.SelectRepository(r)
}

// Clear closes whichever detail is open.
func (s *SelectionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = model.NoSelection()
}

// Current returns the open selection.
func (s *SelectionState) Current() model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
