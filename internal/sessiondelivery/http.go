// Package sessiondelivery manages delivery layer of desks, the HTTP rendition
// of the windowed front-end. A desk is a session with its own selected account.
package sessiondelivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	Open() domain.Session
	Create(ctx context.Context, name, initialBalance string) (domain.Account, error)
	Select(ctx context.Context, sess *domain.Session, name string) (domain.Account, error)
	Current(ctx context.Context, sess *domain.Session) (domain.Account, error)
	Deposit(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error)
	Withdraw(ctx context.Context, sess *domain.Session, amount string) (domain.Account, error)
	TopUp(ctx context.Context, sess *domain.Session, phone, amount string) (domain.Account, error)
	Transfer(ctx context.Context, sess *domain.Session, to, amount string) (domain.Account, error)
	Delete(ctx context.Context, sess *domain.Session, confirmed bool) (bool, error)
}

// Store provides desk persistence needed by session delivery layer.
type Store interface {
	Create(ctx context.Context, s domain.Session) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
	store   Store
}

// NewHandler returns desk handler.
func NewHandler(ss Service, store Store) *Handler {
	return &Handler{
		service: ss,
		store:   store,
	}
}

// Actions tells which account buttons are enabled.
type Actions struct {
	Deposit  bool `json:"deposit"`
	Withdraw bool `json:"withdraw"`
	Transfer bool `json:"transfer"`
	TopUp    bool `json:"topup"`
	Delete   bool `json:"delete"`
}

// View is what a desk shows after every action.
type View struct {
	ID       uuid.UUID `json:"id"`
	Selected string    `json:"selected"`
	Balance  string    `json:"balance,omitempty"`
	Label    string    `json:"label"`
	History  string    `json:"history"`
	Actions  Actions   `json:"actions"`
	Message  string    `json:"message,omitempty"`
}

const (
	noSelectionLabel = "No account selected"
	noHistory        = "No transactions yet"
)

func render(sess domain.Session, account *domain.Account, message string) View {
	v := View{
		ID:      sess.ID,
		Label:   noSelectionLabel,
		History: noHistory,
		Message: message,
	}

	if account == nil {
		return v
	}

	v.Selected = account.Name
	v.Balance = account.Balance.String()
	v.Label = fmt.Sprintf("Balance for %s: %s", account.Name, moneypkg.Format("$", account.Balance))
	v.Actions = Actions{Deposit: true, Withdraw: true, Transfer: true, TopUp: true, Delete: true}

	if history := account.History(); len(history) > 0 {
		v.History = "Transaction History:\n- " + strings.Join(history, "\n- ")
	}

	return v
}

// Open handles http request to open a new desk.
func (h *Handler) Open(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	sess, err := h.store.Create(ctx, h.service.Open())
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: render(sess, nil, "")})
}

// Get handles http request to show the desk.
func (h *Handler) Get(gctx *gin.Context) {
	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		return "", nil
	})
}

// Close handles http request to quit the desk.
func (h *Handler) Close(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	sess := gctx.MustGet(middleware.DeskKey).(domain.Session)

	if err := h.store.Delete(ctx, sess.ID); err != nil {
		h.fail(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

type createRequest struct {
	Name           string `json:"name" binding:"required"`
	InitialBalance moneypkg.Amount `json:"initial_balance" binding:"required,amount"`
}

// CreateAccount handles http request to create an account from the desk.
// The selection does not change.
func (h *Handler) CreateAccount(gctx *gin.Context) {
	var req createRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		account, err := h.service.Create(ctx, req.Name, string(req.InitialBalance))
		if err != nil {
			return "", err
		}

		return "Account created for " + account.Name, nil
	})
}

type selectRequest struct {
	Name string `json:"name" binding:"required"`
}

// Select handles http request to select an account.
func (h *Handler) Select(gctx *gin.Context) {
	var req selectRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		account, err := h.service.Select(ctx, sess, req.Name)
		if err != nil {
			return "", err
		}

		return "Selected account: " + account.Name, nil
	})
}

type amountRequest struct {
	Amount moneypkg.Amount `json:"amount" binding:"required,amount"`
}

// Deposit handles http request to deposit into the selected account.
func (h *Handler) Deposit(gctx *gin.Context) {
	var req amountRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		if _, err := h.service.Deposit(ctx, sess, string(req.Amount)); err != nil {
			return "", err
		}

		return "Deposited " + dollars(req.Amount), nil
	})
}

// Withdraw handles http request to withdraw from the selected account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	var req amountRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		if _, err := h.service.Withdraw(ctx, sess, string(req.Amount)); err != nil {
			return "", err
		}

		return "Withdrew " + dollars(req.Amount), nil
	})
}

type transferRequest struct {
	To     string `json:"to" binding:"required"`
	Amount moneypkg.Amount `json:"amount" binding:"required,amount"`
}

// Transfer handles http request to transfer from the selected account.
func (h *Handler) Transfer(gctx *gin.Context) {
	var req transferRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		if _, err := h.service.Transfer(ctx, sess, req.To, string(req.Amount)); err != nil {
			return "", err
		}

		return fmt.Sprintf("Transferred %s to %s", dollars(req.Amount), req.To), nil
	})
}

type topUpRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Amount moneypkg.Amount `json:"amount" binding:"required,amount"`
}

// TopUp handles http request to top up a phone from the selected account.
func (h *Handler) TopUp(gctx *gin.Context) {
	var req topUpRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		if _, err := h.service.TopUp(ctx, sess, req.Phone, string(req.Amount)); err != nil {
			return "", err
		}

		return fmt.Sprintf("Topped up %s to %s", dollars(req.Amount), req.Phone), nil
	})
}

type deleteRequest struct {
	Confirm bool `json:"confirm"`
}

// DeleteAccount handles http request to delete the selected account.
// Nothing happens unless confirm is true.
func (h *Handler) DeleteAccount(gctx *gin.Context) {
	var req deleteRequest
	if !bind(gctx, &req) {
		return
	}

	h.act(gctx, func(ctx context.Context, sess *domain.Session) (string, error) {
		deleted, err := h.service.Delete(ctx, sess, req.Confirm)
		if err != nil || !deleted {
			return "", err
		}

		return "Account deleted", nil
	})
}

// act runs fn against the loaded desk, saves the desk and renders it.
// The desk is saved even when fn fails, since a failure may clear the selection.
func (h *Handler) act(gctx *gin.Context, fn func(ctx context.Context, sess *domain.Session) (string, error)) {
	ctx := gctx.Request.Context()
	sess := gctx.MustGet(middleware.DeskKey).(domain.Session)

	message, actErr := fn(ctx, &sess)

	if err := h.store.Save(ctx, sess); err != nil {
		h.fail(gctx, err)
		return
	}

	if actErr != nil {
		h.fail(gctx, actErr)
		return
	}

	var account *domain.Account

	if sess.HasSelection() {
		a, err := h.service.Current(ctx, &sess)
		switch {
		case err == nil:
			account = &a
		case errors.Is(err, domain.ErrAccountNotFound):
			if err := h.store.Save(ctx, sess); err != nil {
				h.fail(gctx, err)
				return
			}
		default:
			h.fail(gctx, err)
			return
		}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: render(sess, account, message)})
}

func (h *Handler) fail(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		l.Error().Err(err).Send()
		gctx.JSON(status, web.Error(errorspkg.ErrInternal))

		return
	}

	l.Info().Err(err).Send()
	gctx.JSON(status, web.Error(err))
}

// StatusOf maps a ledger error to its HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMalformedAmount),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrNotEnoughAccounts),
		errors.Is(err, domain.ErrNoAccountSelected):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func bind(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return false
	}

	return true
}

// dollars renders an accepted amount the way the desk labels do.
func dollars(amount moneypkg.Amount) string {
	d, err := moneypkg.Parse(string(amount))
	if err != nil {
		return string(amount)
	}

	return moneypkg.Format("$", d)
}
