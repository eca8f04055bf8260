// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// RepoMem keeps the ledger in memory. Every method runs under one mutex, so
// a check-mutate-log sequence passed to Update or UpdatePair is atomic.
type RepoMem struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	now      func() time.Time
}

// NewRepoMem returns an empty account RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[string]*domain.Account),
		now:      time.Now,
	}
}

// Create creates the account and then returns it.
func (r *RepoMem) Create(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[name]; ok {
		l.Info().Err(domain.ErrDuplicateAccount).Str("account", name).Send()
		return domain.Account{}, domain.ErrDuplicateAccount
	}

	a := domain.NewAccount(name, balance)
	a.CreatedAt = r.now().UTC()
	r.accounts[name] = a

	return a.Clone(), nil
}

// Get returns a copy of the account with the given name.
func (r *RepoMem) Get(ctx context.Context, name string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[name]
	if !ok {
		zerolog.Ctx(ctx).Debug().Str("account", name).Msg("account lookup missed")
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a.Clone(), nil
}

// List returns copies of all accounts ordered by name.
func (r *RepoMem) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		items = append(items, a.Clone())
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// Count returns the number of accounts.
func (r *RepoMem) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.accounts), nil
}

// Delete removes the account with the given name.
func (r *RepoMem) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[name]; !ok {
		return domain.ErrAccountNotFound
	}

	delete(r.accounts, name)

	return nil
}

// Update applies fn to the named account and returns the changed account.
func (r *RepoMem) Update(ctx context.Context, name string, fn func(a *domain.Account) error) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[name]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if err := fn(a); err != nil {
		l.Info().Err(err).Str("account", name).Send()
		return domain.Account{}, err
	}

	return a.Clone(), nil
}

// UpdatePair applies fn to two distinct accounts as one step and returns both.
func (r *RepoMem) UpdatePair(ctx context.Context, from, to string, fn func(from, to *domain.Account) error) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if from == to {
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fromAccount, ok := r.accounts[from]
	if !ok {
		return domain.TransferResult{}, domain.ErrAccountNotFound
	}

	toAccount, ok := r.accounts[to]
	if !ok {
		return domain.TransferResult{}, domain.ErrRecipientNotFound
	}

	if err := fn(fromAccount, toAccount); err != nil {
		l.Info().Err(err).Str("from", from).Str("to", to).Send()
		return domain.TransferResult{}, err
	}

	return domain.TransferResult{
		FromAccount: fromAccount.Clone(),
		ToAccount:   toAccount.Clone(),
	}, nil
}
