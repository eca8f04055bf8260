package accountservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/metricspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

type recordedOperation struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOperation
}

func (r *fakeRecorder) RecordOperation(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOperation{operation, outcome})
}

func newService(t *testing.T, seed map[string]string) (*Service, *fakeRecorder) {
	t.Helper()

	recorder := &fakeRecorder{}
	s := New(accountrepo.NewRepoMem(), recorder)

	for name, balance := range seed {
		if _, err := s.Create(context.Background(), name, balance); err != nil {
			t.Fatalf("s.Create(%q, %q) returned error: %v", name, balance, err)
		}
	}

	recorder.ops = nil

	return s, recorder
}

func balanceOf(t *testing.T, s *Service, name string) string {
	t.Helper()

	a, err := s.Get(context.Background(), name)
	require.NoError(t, err)

	return a.Balance.String()
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name        string
		accountName string
		balance     string
		wantErr     error
		wantBalance string
	}{
		{name: "OK", accountName: "Sonam", balance: "1000", wantBalance: "1000"},
		{name: "ZeroBalance", accountName: "Sonam", balance: "0", wantBalance: "0"},
		{name: "TrimmedName", accountName: "  Sonam ", balance: "1", wantBalance: "1"},
		{name: "EmptyName", accountName: "   ", balance: "1", wantErr: domain.ErrEmptyName},
		{name: "MalformedBalance", accountName: "Sonam", balance: "lots", wantErr: domain.ErrMalformedAmount},
		{name: "NegativeBalance", accountName: "Sonam", balance: "-1", wantErr: domain.ErrNegativeAmount},
		{name: "Duplicate", accountName: "Sangay", balance: "1", wantErr: domain.ErrDuplicateAccount},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newService(t, map[string]string{"Sangay": "500"})

			got, err := s.Create(context.Background(), tc.accountName, tc.balance)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr != nil {
				require.Empty(t, got)
				return
			}

			require.Equal(t, "Sonam", got.Name)
			require.Equal(t, tc.wantBalance, got.Balance.String())
			require.Empty(t, got.Transactions)
		})
	}
}

func TestSingleAccountOperations(t *testing.T) {
	type op func(s *Service, amount string) (domain.Account, error)

	ctx := context.Background()
	ops := map[string]op{
		"deposit": func(s *Service, amount string) (domain.Account, error) {
			return s.Deposit(ctx, "Sonam", amount)
		},
		"withdraw": func(s *Service, amount string) (domain.Account, error) {
			return s.Withdraw(ctx, "Sonam", amount)
		},
		"topup": func(s *Service, amount string) (domain.Account, error) {
			return s.TopUp(ctx, "Sonam", randompkg.Phone(), amount)
		},
	}

	testCases := []struct {
		name        string
		op          string
		amount      string
		wantErr     error
		wantBalance string
		wantOutcome string
	}{
		{name: "DepositOK", op: "deposit", amount: "200", wantBalance: "1200", wantOutcome: metricspkg.OutcomeOK},
		{name: "DepositZero", op: "deposit", amount: "0", wantErr: domain.ErrInvalidAmount, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "DepositMalformed", op: "deposit", amount: "x", wantErr: domain.ErrMalformedAmount, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "DepositTooPrecise", op: "deposit", amount: "1e-2000000", wantErr: domain.ErrMalformedAmount, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "DepositTooLarge", op: "deposit", amount: "1e100000000", wantErr: domain.ErrMalformedAmount, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "WithdrawOK", op: "withdraw", amount: "200", wantBalance: "800", wantOutcome: metricspkg.OutcomeOK},
		{name: "WithdrawNegative", op: "withdraw", amount: "-5", wantErr: domain.ErrInvalidAmount, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "WithdrawOverdraft", op: "withdraw", amount: "2000", wantErr: domain.ErrInsufficientFunds, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
		{name: "TopUpOK", op: "topup", amount: "100", wantBalance: "900", wantOutcome: metricspkg.OutcomeOK},
		{name: "TopUpOverdraft", op: "topup", amount: "1000.5", wantErr: domain.ErrInsufficientFunds, wantBalance: "1000", wantOutcome: metricspkg.OutcomeRejected},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, recorder := newService(t, map[string]string{"Sonam": "1000"})

			_, err := ops[tc.op](s, tc.amount)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantBalance, balanceOf(t, s, "Sonam"))

			a, err := s.Get(ctx, "Sonam")
			require.NoError(t, err)

			wantLogLen := 1
			if tc.wantErr != nil {
				wantLogLen = 0
			}
			require.Len(t, a.Transactions, wantLogLen)

			require.Equal(t, []recordedOperation{{tc.op, tc.wantOutcome}}, recorder.ops)
		})
	}
}

func TestOperationsOnMissingAccount(t *testing.T) {
	s, _ := newService(t, nil)
	ctx := context.Background()

	_, err := s.Deposit(ctx, "ghost", "1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = s.Withdraw(ctx, "ghost", "1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = s.TopUp(ctx, "ghost", randompkg.Phone(), "1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.ErrorIs(t, s.Delete(ctx, "ghost"), domain.ErrAccountNotFound)
}

func TestTransfer(t *testing.T) {
	testCases := []struct {
		name        string
		seed        map[string]string
		from        string
		to          string
		amount      string
		wantErr     error
		wantBalance map[string]string
	}{
		{
			name:        "OK",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Sangay",
			amount:      "300",
			wantBalance: map[string]string{"Sonam": "700", "Sangay": "800"},
		},
		{
			// Rejected before the amount is even looked at.
			name:        "NotEnoughAccounts",
			seed:        map[string]string{"Sonam": "1000"},
			from:        "Sonam",
			to:          "Sangay",
			amount:      "999999",
			wantErr:     domain.ErrNotEnoughAccounts,
			wantBalance: map[string]string{"Sonam": "1000"},
		},
		{
			name:        "SameAccount",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Sonam",
			amount:      "1",
			wantErr:     domain.ErrSameAccount,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
		{
			name:        "RecipientNotFound",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Pema",
			amount:      "1",
			wantErr:     domain.ErrRecipientNotFound,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
		{
			name:        "SenderNotFound",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Pema",
			to:          "Sangay",
			amount:      "1",
			wantErr:     domain.ErrAccountNotFound,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
		{
			name:        "Malformed",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Sangay",
			amount:      "1O0",
			wantErr:     domain.ErrMalformedAmount,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
		{
			name:        "Zero",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Sangay",
			amount:      "0",
			wantErr:     domain.ErrInvalidAmount,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
		{
			name:        "Overdraft",
			seed:        map[string]string{"Sonam": "1000", "Sangay": "500"},
			from:        "Sonam",
			to:          "Sangay",
			amount:      "2000",
			wantErr:     domain.ErrInsufficientFunds,
			wantBalance: map[string]string{"Sonam": "1000", "Sangay": "500"},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newService(t, tc.seed)

			res, err := s.Transfer(context.Background(), tc.from, tc.to, tc.amount)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr == nil {
				require.Equal(t, tc.wantBalance[tc.from], res.FromAccount.Balance.String())
				require.Equal(t, tc.wantBalance[tc.to], res.ToAccount.Balance.String())
			}

			for name, want := range tc.wantBalance {
				require.Equal(t, want, balanceOf(t, s, name), name)
			}
		})
	}
}

func TestTransactionHistoryScenario(t *testing.T) {
	s, _ := newService(t, map[string]string{"Sonam": "1000", "Sangay": "500"})
	ctx := context.Background()

	_, err := s.Deposit(ctx, "Sonam", "200")
	require.NoError(t, err)
	require.Equal(t, "1200", balanceOf(t, s, "Sonam"))

	_, err = s.Withdraw(ctx, "Sonam", "100")
	require.NoError(t, err)
	require.Equal(t, "1100", balanceOf(t, s, "Sonam"))

	_, err = s.Transfer(ctx, "Sonam", "Sangay", "50")
	require.NoError(t, err)
	require.Equal(t, "1050", balanceOf(t, s, "Sonam"))
	require.Equal(t, "550", balanceOf(t, s, "Sangay"))

	phone := randompkg.Phone()
	_, err = s.TopUp(ctx, "Sonam", phone, "25")
	require.NoError(t, err)
	require.Equal(t, "1025", balanceOf(t, s, "Sonam"))

	sonam, err := s.Get(ctx, "Sonam")
	require.NoError(t, err)
	require.Equal(t, []string{
		"Deposited: 200",
		"Withdrew: 100",
		"Transferred: 50 to Sangay",
		"Mobile top-up: 25 to " + phone,
	}, sonam.Transactions)

	sangay, err := s.Get(ctx, "Sangay")
	require.NoError(t, err)
	require.Equal(t, []string{"Received: 50 from Sonam"}, sangay.Transactions)

	// Deleting the sender keeps the recipient's record.
	require.NoError(t, s.Delete(ctx, "Sonam"))

	sangay, err = s.Get(ctx, "Sangay")
	require.NoError(t, err)
	require.Equal(t, []string{"Received: 50 from Sonam"}, sangay.Transactions)

	accounts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}

func TestBalanceNeverNegative(t *testing.T) {
	s, _ := newService(t, map[string]string{"a": "10", "b": "10"})
	ctx := context.Background()

	amounts := []string{"3", "7.5", "0.5", "12", "1", "9.99", "0.01", "4"}

	for i, amount := range amounts {
		from, to := "a", "b"
		if i%2 == 1 {
			from, to = to, from
		}

		_, _ = s.Withdraw(ctx, from, amount)
		_, _ = s.Transfer(ctx, from, to, amount)
		_, _ = s.TopUp(ctx, to, randompkg.Phone(), amount)

		for _, name := range []string{"a", "b"} {
			a, err := s.Get(ctx, name)
			require.NoError(t, err)
			require.False(t, a.Balance.IsNegative(), "%s went negative: %s", name, a.Balance)
		}
	}
}

func TestRepoFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	recorder := &fakeRecorder{}
	s := New(repo, recorder)
	ctx := context.Background()

	repo.EXPECT().
		Count(gomock.Any()).
		Times(1).
		Return(0, errorspkg.ErrInternal)
	repo.EXPECT().
		UpdatePair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Times(0)

	_, err := s.Transfer(ctx, "a", "b", "1")
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Eq("Sonam"), gomock.AssignableToTypeOf(decimal.Decimal{})).
		Times(1).
		Return(domain.Account{}, errorspkg.ErrInternal)

	_, err = s.Create(ctx, "Sonam", "10")
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	require.Equal(t, []recordedOperation{
		{"transfer", metricspkg.OutcomeError},
		{"create", metricspkg.OutcomeError},
	}, recorder.ops)
}

func TestIsBusinessError(t *testing.T) {
	require.True(t, IsBusinessError(domain.ErrInsufficientFunds))
	require.True(t, IsBusinessError(domain.ErrRecipientNotFound))
	require.False(t, IsBusinessError(errorspkg.ErrInternal))
	require.False(t, IsBusinessError(errors.New("boom")))
}

func TestNewDefaultsRecorder(t *testing.T) {
	s := New(accountrepo.NewRepoMem(), nil)

	_, err := s.Create(context.Background(), "Sonam", "1")
	require.NoError(t, err)
}
