package transferdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

func init() {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("amount", moneypkg.ValidAmount)
	}
}

type transferResponse struct {
	Data struct {
		Transfer domain.TransferResult `json:"transfer"`
	} `json:"data"`
	Error string `json:"error"`
}

func TestCreateTransferAPI(t *testing.T) {
	from := randompkg.Name()
	to := randompkg.Name() + "x"
	amount := "50"

	result := domain.TransferResult{
		FromAccount: domain.Account{
			Name:         from,
			Balance:      decimal.RequireFromString("950"),
			Transactions: []string{"Transferred: 50 to " + to},
		},
		ToAccount: domain.Account{
			Name:         to,
			Balance:      decimal.RequireFromString("550"),
			Transactions: []string{"Received: 50 from " + from},
		},
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"from": from, "to": to, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, amount).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "RequiredTo",
			body: gin.H{"from": from, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "To field is required",
		},
		{
			name: "MalformedAmount",
			body: gin.H{"from": from, "to": to, "amount": "fifty"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a number",
		},
		{
			name: "NotEnoughAccounts",
			body: gin.H{"from": from, "to": to, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, amount).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrNotEnoughAccounts)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrNotEnoughAccounts.Error(),
		},
		{
			name: "SameAccount",
			body: gin.H{"from": from, "to": from, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, from, amount).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrSameAccount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameAccount.Error(),
		},
		{
			name: "RecipientNotFound",
			body: gin.H{"from": from, "to": to, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, amount).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrRecipientNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrRecipientNotFound.Error(),
		},
		{
			name: "InsufficientFunds",
			body: gin.H{"from": from, "to": to, "amount": "1000000"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, "1000000").
					Times(1).
					Return(domain.TransferResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name: "NonPositiveAmount",
			body: gin.H{"from": from, "to": to, "amount": "-5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, "-5").
					Times(1).
					Return(domain.TransferResult{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name: "InternalServiceError",
			body: gin.H{"from": from, "to": to, "amount": amount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), from, to, amount).
					Times(1).
					Return(domain.TransferResult{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service)
			server := gin.New()
			server.POST("/transfers", handler.Create)

			body, err := json.Marshal(tc.body)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if got := w.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res transferResponse
			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Errorf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
			}

			if tc.wantStatusCode == http.StatusOK {
				equateDecimal := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
				if diff := cmp.Diff(result, res.Data.Transfer, equateDecimal); diff != "" {
					t.Errorf("res.Data.Transfer mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
