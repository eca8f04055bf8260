package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// DeskKey is the gin context key of the loaded desk session.
const DeskKey = "desk_session"

// ErrInvalidDeskID indicates a desk id that is not a UUID.
var ErrInvalidDeskID = errors.New("invalid desk id")

// DeskStore provides the session lookup needed by DeskLoader.
type DeskStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Session, error)
}

// DeskLoader loads the desk session named by the :id path parameter and
// stores it under DeskKey.
func DeskLoader(store DeskStore) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := gctx.Request.Context()
		l := zerolog.Ctx(ctx)

		id, err := uuid.Parse(gctx.Param("id"))
		if err != nil {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusBadRequest, web.Error(ErrInvalidDeskID))

			return
		}

		sess, err := store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				gctx.AbortWithStatusJSON(http.StatusNotFound, web.Error(err))
				return
			}

			l.Error().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		gctx.Set(DeskKey, sess)
		gctx.Next()
	}
}
