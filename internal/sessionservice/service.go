// Package sessionservice manages the selected-account state shared by all front-ends.
package sessionservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// AccountService provides the ledger operations needed by session service layer.
type AccountService interface {
	Create(ctx context.Context, name, initialBalance string) (domain.Account, error)
	Get(ctx context.Context, name string) (domain.Account, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, name string) error
	Deposit(ctx context.Context, name, amount string) (domain.Account, error)
	Withdraw(ctx context.Context, name, amount string) (domain.Account, error)
	TopUp(ctx context.Context, name, phone, amount string) (domain.Account, error)
	CheckTransfer(ctx context.Context, from, to string) error
	Transfer(ctx context.Context, from, to, amount string) (domain.TransferResult, error)
}

// Service facilitates session service layer logic.
type Service struct {
	accounts AccountService
}

// New returns session service struct operating on the given ledger.
func New(as AccountService) *Service {
	return &Service{accounts: as}
}

// Open returns a fresh session with no account selected.
func (s *Service) Open() domain.Session {
	return domain.Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// CheckAvailable returns ErrDuplicateAccount if the name is already taken.
func (s *Service) CheckAvailable(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	_, err := s.accounts.Get(ctx, name)
	switch {
	case err == nil:
		return domain.ErrDuplicateAccount
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return err
	}
}

// Create creates a new account. It does not change the selection.
func (s *Service) Create(ctx context.Context, name, initialBalance string) (domain.Account, error) {
	return s.accounts.Create(ctx, name, initialBalance)
}

// Select makes the named account the session's current account.
// On failure the previous selection is kept.
func (s *Service) Select(ctx context.Context, sess *domain.Session, name string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	count, err := s.accounts.Count(ctx)
	if err != nil {
		return domain.Account{}, err
	}

	if count == 0 {
		return domain.Account{}, domain.ErrEmptyLedger
	}

	account, err := s.accounts.Get(ctx, name)
	if err != nil {
		return domain.Account{}, err
	}

	sess.Selected = account.Name
	l.Debug().Str("session", sess.ID.String()).Str("account", name).Msg("account selected")

	return account, nil
}

// Current returns the selected account. If it was deleted elsewhere the
// selection is cleared.
func (s *Service) Current(ctx context.Context, sess *domain.Session) (domain.Account, error) {
	if !sess.HasSelection() {
		return domain.Account{}, domain.ErrNoAccountSelected
	}

	account, err := s.accounts.Get(ctx, sess.Selected)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			sess.Deselect()
		}

		return domain.Account{}, err
	}

	return account, nil
}

// Deposit adds the amount to the selected account.
func (s *Service) Deposit(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error) {
	if !sess.HasSelection() {
		return domain.Account{}, domain.ErrNoAccountSelected
	}

	return s.afterChange(sess)(s.accounts.Deposit(ctx, sess.Selected, amount))
}

// Withdraw takes the amount from the selected account.
func (s *Service) Withdraw(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error) {
	if !sess.HasSelection() {
		return domain.Account{}, domain.ErrNoAccountSelected
	}

	return s.afterChange(sess)(s.accounts.Withdraw(ctx, sess.Selected, amount))
}

// TopUp charges the selected account for a mobile top-up.
func (s *Service) TopUp(ctx context.Context, sess *domain.Session, phone, amount string) (domain.Account, error) {
	if !sess.HasSelection() {
		return domain.Account{}, domain.ErrNoAccountSelected
	}

	return s.afterChange(sess)(s.accounts.TopUp(ctx, sess.Selected, phone, amount))
}

// CanTransfer reports whether the selected account can send a transfer at all,
// before a recipient is chosen.
func (s *Service) CanTransfer(ctx context.Context, sess *domain.Session) error {
	if !sess.HasSelection() {
		return domain.ErrNoAccountSelected
	}

	count, err := s.accounts.Count(ctx)
	if err != nil {
		return err
	}

	if count < 2 {
		return domain.ErrNotEnoughAccounts
	}

	return nil
}

// CheckTransfer validates a transfer from the selected account to the named one.
func (s *Service) CheckTransfer(ctx context.Context, sess *domain.Session, to string) error {
	if !sess.HasSelection() {
		return domain.ErrNoAccountSelected
	}

	err := s.accounts.CheckTransfer(ctx, sess.Selected, to)
	if isSenderMissing(err) {
		sess.Deselect()
	}

	return err
}

// Transfer moves the amount from the selected account to the named one and
// returns the updated selected account.
func (s *Service) Transfer(ctx context.Context, sess *domain.Session, to, amount string) (domain.Account, error) {
	if !sess.HasSelection() {
		return domain.Account{}, domain.ErrNoAccountSelected
	}

	res, err := s.accounts.Transfer(ctx, sess.Selected, to, amount)
	if err != nil {
		if isSenderMissing(err) {
			sess.Deselect()
		}

		return domain.Account{}, err
	}

	return res.FromAccount, nil
}

// Delete removes the selected account when confirmed and clears the selection.
// It reports whether the account was removed.
func (s *Service) Delete(ctx context.Context, sess *domain.Session, confirmed bool) (bool, error) {
	if !sess.HasSelection() {
		return false, domain.ErrNoAccountSelected
	}

	if !confirmed {
		return false, nil
	}

	err := s.accounts.Delete(ctx, sess.Selected)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return false, err
	}

	sess.Deselect()

	return err == nil, err
}

func (s *Service) afterChange(sess *domain.Session) func(domain.Account, error) (domain.Account, error) {
	return func(a domain.Account, err error) (domain.Account, error) {
		if isSenderMissing(err) {
			sess.Deselect()
		}

		return a, err
	}
}

// isSenderMissing tells a vanished selected account apart from a missing recipient.
func isSenderMissing(err error) bool {
	return errors.Is(err, domain.ErrAccountNotFound) && !errors.Is(err, domain.ErrRecipientNotFound)
}
