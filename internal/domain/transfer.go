package domain

import "errors"

var (
	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrMalformedAmount indicates that the amount is not a number.
	ErrMalformedAmount = errors.New("invalid amount entered")
	// ErrNegativeAmount indicates a negative opening balance.
	ErrNegativeAmount = errors.New("initial balance cannot be negative")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount indicates a transfer to the account it is sent from.
	ErrSameAccount = errors.New("cannot transfer to same account")
	// ErrNotEnoughAccounts indicates that the ledger holds fewer than two accounts.
	ErrNotEnoughAccounts = errors.New("need at least 2 accounts to transfer")
)

// TransferResult is the result of the transfer between two accounts.
type TransferResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
}
