// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/metricspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, name string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, name string) error
	Update(ctx context.Context, name string, fn func(a *domain.Account) error) (domain.Account, error)
	UpdatePair(ctx context.Context, from, to string, fn func(from, to *domain.Account) error) (domain.TransferResult, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo    Repo
	metrics metricspkg.Recorder
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, recorder metricspkg.Recorder) *Service {
	if recorder == nil {
		recorder = metricspkg.NoOpRecorder{}
	}

	return &Service{
		repo:    ar,
		metrics: recorder,
	}
}

// Create creates and returns account with the given name and opening balance.
func (s *Service) Create(ctx context.Context, name, initialBalance string) (account domain.Account, err error) {
	defer s.observe("create", time.Now())(&err)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, domain.ErrEmptyName
	}

	balance, err := parseAmount(ctx, initialBalance)
	if err != nil {
		return domain.Account{}, err
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeAmount
	}

	return s.repo.Create(ctx, name, balance)
}

// Get returns account with the given name.
func (s *Service) Get(ctx context.Context, name string) (domain.Account, error) {
	return s.repo.Get(ctx, name)
}

// List returns all accounts ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// Count returns the number of accounts in the ledger.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Delete removes the account. Transfers already recorded in other accounts stay there.
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	defer s.observe("delete", time.Now())(&err)

	return s.repo.Delete(ctx, name)
}

// Deposit adds the amount to the account.
func (s *Service) Deposit(ctx context.Context, name, amount string) (account domain.Account, err error) {
	defer s.observe("deposit", time.Now())(&err)

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	return s.repo.Update(ctx, name, func(a *domain.Account) error {
		return a.Deposit(d)
	})
}

// Withdraw takes the amount from the account.
func (s *Service) Withdraw(ctx context.Context, name, amount string) (account domain.Account, err error) {
	defer s.observe("withdraw", time.Now())(&err)

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	return s.repo.Update(ctx, name, func(a *domain.Account) error {
		return a.Withdraw(d)
	})
}

// TopUp charges the amount to the account for the given phone number.
func (s *Service) TopUp(ctx context.Context, name, phone, amount string) (account domain.Account, err error) {
	defer s.observe("topup", time.Now())(&err)

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	return s.repo.Update(ctx, name, func(a *domain.Account) error {
		return a.MobileTopUp(d, phone)
	})
}

// CheckTransfer validates the parties of a transfer before any amount is known.
func (s *Service) CheckTransfer(ctx context.Context, from, to string) error {
	l := zerolog.Ctx(ctx)

	count, err := s.repo.Count(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if count < 2 {
		return domain.ErrNotEnoughAccounts
	}

	if from == to {
		return domain.ErrSameAccount
	}

	if _, err := s.repo.Get(ctx, from); err != nil {
		return err
	}

	if _, err := s.repo.Get(ctx, to); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrRecipientNotFound
		}

		return err
	}

	return nil
}

// Transfer checks if transfer request is valid and then executes transfer.
func (s *Service) Transfer(ctx context.Context, from, to, amount string) (res domain.TransferResult, err error) {
	defer s.observe("transfer", time.Now())(&err)

	if err := s.CheckTransfer(ctx, from, to); err != nil {
		return domain.TransferResult{}, err
	}

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.TransferResult{}, err
	}

	return s.repo.UpdatePair(ctx, from, to, func(src, dst *domain.Account) error {
		return src.Transfer(d, dst)
	})
}

func (s *Service) observe(operation string, start time.Time) func(err *error) {
	return func(err *error) {
		outcome := metricspkg.OutcomeOK

		if err != nil && *err != nil {
			outcome = metricspkg.OutcomeRejected
			if !IsBusinessError(*err) {
				outcome = metricspkg.OutcomeError
			}
		}

		s.metrics.RecordOperation(operation, outcome, time.Since(start))
	}
}

// IsBusinessError reports whether err is one of the ledger's rule violations
// rather than an unexpected failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrAccountNotFound,
		domain.ErrDuplicateAccount,
		domain.ErrEmptyName,
		domain.ErrInvalidAmount,
		domain.ErrMalformedAmount,
		domain.ErrNegativeAmount,
		domain.ErrInsufficientFunds,
		domain.ErrSameAccount,
		domain.ErrNotEnoughAccounts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	d, err := moneypkg.Parse(amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("amount", amount).Send()
		return decimal.Zero, domain.ErrMalformedAmount
	}

	return d, nil
}
