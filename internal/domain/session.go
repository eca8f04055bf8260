package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoAccountSelected indicates an account action without a selected account.
	ErrNoAccountSelected = errors.New("no account selected")
	// ErrEmptyLedger indicates that there is no account to select yet.
	// It matches ErrAccountNotFound.
	ErrEmptyLedger = fmt.Errorf("no accounts exist yet: %w", ErrAccountNotFound)
	// ErrSessionNotFound indicates that the session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// Session holds one front-end's view of the ledger: which account is selected, if any.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Selected  string    `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
}

// HasSelection reports whether an account is selected.
func (s *Session) HasSelection() bool {
	return s.Selected != ""
}

// Deselect clears the selected account.
func (s *Session) Deselect() {
	s.Selected = ""
}
