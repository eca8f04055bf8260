// Package sessionrepo manages repository layer of desk sessions.
package sessionrepo

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// ErrDuplicateSession indicates a session id collision on create.
var ErrDuplicateSession = errors.New("session already exists")

// RepoMem keeps desk sessions in memory.
type RepoMem struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
}

// NewRepoMem returns an empty session RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		sessions: make(map[uuid.UUID]domain.Session),
	}
}

// Create stores a new session and then returns it.
func (r *RepoMem) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		zerolog.Ctx(ctx).Error().Str("session", s.ID.String()).Err(ErrDuplicateSession).Send()
		return domain.Session{}, ErrDuplicateSession
	}

	r.sessions[s.ID] = s

	return s, nil
}

// Get returns the session with the given id.
func (r *RepoMem) Get(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return s, nil
}

// Save replaces a stored session. A session removed in the meantime is not revived.
func (r *RepoMem) Save(ctx context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return domain.ErrSessionNotFound
	}

	r.sessions[s.ID] = s

	return nil
}

// Delete removes the session with the given id.
func (r *RepoMem) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}

	delete(r.sessions, id)
	zerolog.Ctx(ctx).Debug().Str("session", id.String()).Msg("session closed")

	return nil
}
