package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type storeFunc func(ctx context.Context, id uuid.UUID) (domain.Session, error)

func (f storeFunc) Get(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	return f(ctx, id)
}

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		config    configpkg.Config
		wantInfo  bool
		wantTrace bool
	}{
		{
			name:     "Desk",
			config:   configpkg.Config{Mode: configpkg.ModeDesk},
			wantInfo: true,
		},
		{
			name:   "Console",
			config: configpkg.Config{Mode: configpkg.ModeConsole},
		},
		{
			name:      "Development",
			config:    configpkg.Config{Mode: configpkg.ModeDesk, Environment: configpkg.EnvDevelopment},
			wantInfo:  true,
			wantTrace: true,
		},
		{
			name:   "ConsoleDevelopment",
			config: configpkg.Config{Mode: configpkg.ModeConsole, Environment: configpkg.EnvDevelopment},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := NewLogger(tc.config, &buf)

			l.Trace().Msg("trace line")
			require.Equal(t, tc.wantTrace, bytes.Contains(buf.Bytes(), []byte("trace line")))

			l.Info().Msg("info line")
			require.Equal(t, tc.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")))

			l.Warn().Msg("warn line")
			require.Contains(t, buf.String(), "warn line")
		})
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(configpkg.Config{}, &buf)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	t.Run("GeneratesID", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusNoContent, recorder.Code)

		id := recorder.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Contains(t, buf.String(), id)
	})

	t.Run("KeepsID", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/ping", nil)
		request.Header.Set(RequestIDHeader, "req-42")
		router.ServeHTTP(recorder, request)

		require.Equal(t, "req-42", recorder.Header().Get(RequestIDHeader))
		require.Contains(t, buf.String(), `"request_id":"req-42"`)
		require.Contains(t, buf.String(), `"status_code":204`)
	})
}

func TestDeskLoader(t *testing.T) {
	t.Parallel()

	known := domain.Session{ID: uuid.New(), Selected: "Sonam"}

	store := storeFunc(func(ctx context.Context, id uuid.UUID) (domain.Session, error) {
		switch id {
		case known.ID:
			return known, nil
		case uuid.Nil:
			return domain.Session{}, errors.New("store is down")
		}

		return domain.Session{}, domain.ErrSessionNotFound
	})

	router := gin.New()
	router.GET("/desks/:id", DeskLoader(store), func(c *gin.Context) {
		sess := c.MustGet(DeskKey).(domain.Session)
		c.JSON(http.StatusOK, web.Response{Data: sess.Selected})
	})

	testCases := []struct {
		name       string
		id         string
		wantStatus int
		wantBody   web.Response
	}{
		{
			name:       "OK",
			id:         known.ID.String(),
			wantStatus: http.StatusOK,
			wantBody:   web.Response{Data: "Sonam"},
		},
		{
			name:       "InvalidID",
			id:         "not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantBody:   web.Error(ErrInvalidDeskID),
		},
		{
			name:       "NotFound",
			id:         uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantBody:   web.Error(domain.ErrSessionNotFound),
		},
		{
			name:       "InternalError",
			id:         uuid.Nil.String(),
			wantStatus: http.StatusInternalServerError,
			wantBody:   web.Error(errorspkg.ErrInternal),
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/desks/"+tc.id, nil)
			router.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatus, recorder.Code)

			var got web.Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
			require.Equal(t, tc.wantBody, got)
		})
	}
}
