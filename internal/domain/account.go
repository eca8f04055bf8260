// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrRecipientNotFound indicates that the transfer recipient is not found.
	ErrRecipientNotFound = fmt.Errorf("recipient %w", ErrAccountNotFound)
	// ErrDuplicateAccount indicates that the account with the given name already exists.
	ErrDuplicateAccount = errors.New("account with this name already exists")
	// ErrEmptyName indicates that the account name is blank.
	ErrEmptyName = errors.New("account name is required")
)

// Account holds one holder's balance and append-only transaction log.
type Account struct {
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []string        `json:"transactions"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewAccount returns an account with the given opening balance and an empty log.
func NewAccount(name string, balance decimal.Decimal) *Account {
	return &Account{
		Name:         name,
		Balance:      balance,
		Transactions: []string{},
	}
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	a.record("Deposited: %s", amount)

	return nil
}

// Withdraw takes amount from the balance.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := a.checkDebit(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Sub(amount)
	a.record("Withdrew: %s", amount)

	return nil
}

// Transfer moves amount to the target account and logs it on both sides.
// Only the source balance is checked.
func (a *Account) Transfer(amount decimal.Decimal, target *Account) error {
	if err := a.checkDebit(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Sub(amount)
	target.Balance = target.Balance.Add(amount)

	a.record("Transferred: %s to %s", amount, target.Name)
	target.record("Received: %s from %s", amount, a.Name)

	return nil
}

// MobileTopUp charges amount to the balance for the given phone number.
func (a *Account) MobileTopUp(amount decimal.Decimal, phone string) error {
	if err := a.checkDebit(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Sub(amount)
	a.record("Mobile top-up: %s to %s", amount, phone)

	return nil
}

// History returns a copy of the transaction log.
func (a *Account) History() []string {
	out := make([]string, len(a.Transactions))
	copy(out, a.Transactions)

	return out
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() Account {
	c := *a
	c.Transactions = a.History()

	return c
}

func (a *Account) checkDebit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}

	return nil
}

func (a *Account) record(format string, args ...any) {
	a.Transactions = append(a.Transactions, fmt.Sprintf(format, args...))
}
