// Package consoledelivery manages the interactive console front-end.
package consoledelivery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Service provides session service layer interface needed by the console.
//
//go:generate mockgen -source console.go -destination console_mock.go -package consoledelivery
type Service interface {
	Open() domain.Session
	CheckAvailable(ctx context.Context, name string) error
	Create(ctx context.Context, name, initialBalance string) (domain.Account, error)
	Select(ctx context.Context, sess *domain.Session, name string) (domain.Account, error)
	Current(ctx context.Context, sess *domain.Session) (domain.Account, error)
	Deposit(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error)
	Withdraw(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error)
	TopUp(ctx context.Context, sess *domain.Session, phone, amount string) (domain.Account, error)
	CanTransfer(ctx context.Context, sess *domain.Session) error
	CheckTransfer(ctx context.Context, sess *domain.Session, to string) error
	Transfer(ctx context.Context, sess *domain.Session, to, amount string) (domain.Account, error)
	Delete(ctx context.Context, sess *domain.Session, confirmed bool) (bool, error)
}

const menu = `
Banking Application Menu:
1. Create Account
2. Select Account
3. Deposit
4. Withdraw
5. Transfer
6. Mobile Top-up
7. Delete Account
8. View Balance & Transactions
9. Exit
`

// Console runs the menu loop over a line oriented input and output.
type Console struct {
	in      *bufio.Scanner
	out     io.Writer
	service Service
	session domain.Session
}

// New returns console reading choices from in and writing to out.
func New(in io.Reader, out io.Writer, s Service) *Console {
	return &Console{
		in:      bufio.NewScanner(in),
		out:     out,
		service: s,
		session: s.Open(),
	}
}

// Run prints the menu and serves choices until exit or end of input.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, menu)

		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out, "\nExiting...")
				return nil
			}

			return err
		}

		exit, err := c.Process(ctx, choice)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out, "\nExiting...")
				return nil
			}

			return err
		}

		if exit {
			return nil
		}
	}
}

// Process serves one menu choice. It reports whether the loop should stop.
// Business errors are printed, only input failures are returned.
func (c *Console) Process(ctx context.Context, choice string) (bool, error) {
	zerolog.Ctx(ctx).Debug().Str("choice", choice).Msg("menu choice")

	var err error

	switch strings.TrimSpace(choice) {
	case "1":
		err = c.create(ctx)
	case "2":
		err = c.selectAccount(ctx)
	case "3":
		err = c.deposit(ctx)
	case "4":
		err = c.withdraw(ctx)
	case "5":
		err = c.transfer(ctx)
	case "6":
		err = c.topUp(ctx)
	case "7":
		err = c.delete(ctx)
	case "8":
		err = c.view(ctx)
	case "9":
		fmt.Fprintln(c.out, "Exiting...")
		return true, nil
	default:
		fmt.Fprintln(c.out, "Invalid choice. Please try again.")
		return false, nil
	}

	if err == nil {
		return false, nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, errInput) {
		return false, err
	}

	c.printError(ctx, err)

	return false, nil
}

var errInput = errors.New("read input")

func (c *Console) prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)

	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", errInput, err)
		}

		return "", io.EOF
	}

	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) printError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedAmount):
		fmt.Fprintln(c.out, "Error: Invalid amount entered")
		return
	case errors.Is(err, domain.ErrEmptyLedger):
		fmt.Fprintln(c.out, "Error: Account not found")
		return
	}

	zerolog.Ctx(ctx).Info().Err(err).Send()
	fmt.Fprintln(c.out, "Error: "+sentence(err.Error()))
}

// sentence upper-cases the first letter of an error message.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}

	return string(unicode.ToUpper(r)) + msg[size:]
}

func (c *Console) create(ctx context.Context) error {
	name, err := c.prompt("Enter account holder name: ")
	if err != nil {
		return err
	}

	if err := c.service.CheckAvailable(ctx, name); err != nil {
		return err
	}

	balance, err := c.prompt("Enter initial balance: ")
	if err != nil {
		return err
	}

	account, err := c.service.Create(ctx, name, balance)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Account created for %s\n", account.Name)

	return nil
}

func (c *Console) selectAccount(ctx context.Context) error {
	name, err := c.prompt("Enter account holder name: ")
	if err != nil {
		return err
	}

	account, err := c.service.Select(ctx, &c.session, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Selected account: %s\n", account.Name)

	return nil
}

func (c *Console) deposit(ctx context.Context) error {
	if _, err := c.service.Current(ctx, &c.session); err != nil {
		return err
	}

	amount, err := c.prompt("Enter amount to deposit: ")
	if err != nil {
		return err
	}

	if _, err := c.service.Deposit(ctx, &c.session, amount); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Deposited %s\n", display(amount))

	return nil
}

func (c *Console) withdraw(ctx context.Context) error {
	if _, err := c.service.Current(ctx, &c.session); err != nil {
		return err
	}

	amount, err := c.prompt("Enter amount to withdraw: ")
	if err != nil {
		return err
	}

	if _, err := c.service.Withdraw(ctx, &c.session, amount); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Withdrew %s\n", display(amount))

	return nil
}

func (c *Console) transfer(ctx context.Context) error {
	if err := c.service.CanTransfer(ctx, &c.session); err != nil {
		return err
	}

	to, err := c.prompt("Enter recipient account name: ")
	if err != nil {
		return err
	}

	if err := c.service.CheckTransfer(ctx, &c.session, to); err != nil {
		return err
	}

	amount, err := c.prompt("Enter amount to transfer: ")
	if err != nil {
		return err
	}

	if _, err := c.service.Transfer(ctx, &c.session, to, amount); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Transferred %s to %s\n", display(amount), to)

	return nil
}

func (c *Console) topUp(ctx context.Context) error {
	if _, err := c.service.Current(ctx, &c.session); err != nil {
		return err
	}

	phone, err := c.prompt("Enter phone number: ")
	if err != nil {
		return err
	}

	amount, err := c.prompt("Enter amount to top up: ")
	if err != nil {
		return err
	}

	if _, err := c.service.TopUp(ctx, &c.session, phone, amount); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Topped up %s to %s\n", display(amount), phone)

	return nil
}

func (c *Console) delete(ctx context.Context) error {
	account, err := c.service.Current(ctx, &c.session)
	if err != nil {
		return err
	}

	answer, err := c.prompt(fmt.Sprintf("Delete account for %s? (y/n): ", account.Name))
	if err != nil {
		return err
	}

	deleted, err := c.service.Delete(ctx, &c.session, strings.EqualFold(answer, "y"))
	if err != nil {
		return err
	}

	if deleted {
		fmt.Fprintln(c.out, "Account deleted")
	}

	return nil
}

func (c *Console) view(ctx context.Context) error {
	account, err := c.service.Current(ctx, &c.session)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Balance for %s: %s\n", account.Name, account.Balance.String())
	fmt.Fprintln(c.out, "Transactions:")

	for _, t := range account.History() {
		fmt.Fprintf(c.out, "- %s\n", t)
	}

	return nil
}

// display renders an accepted amount the same way the transaction log does.
func display(amount string) string {
	d, err := moneypkg.Parse(amount)
	if err != nil {
		return amount
	}

	return d.String()
}
