// Package httpserver manages server creation and api routing.
package httpserver

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/internal/transferdelivery"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/metricspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Server holds the ledger, handlers router and configuration.
type Server struct {
	Engine   *gin.Engine
	Config   configpkg.Config
	Ledger   *accountservice.Service
	Registry *prometheus.Registry
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		if err := v.RegisterValidation("amount", moneypkg.ValidAmount); err != nil {
			registerErr = errors.New("cannot register amount validator")
		}
	})

	return registerErr
}

// New creates Server type with an empty in-memory ledger, instantiated domains and routes.
func New(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	registry := prometheus.NewRegistry()

	collector := metricspkg.NewPrometheusCollector(config.MetricsNamespace)
	if err := collector.Register(registry); err != nil {
		return nil, errors.New("cannot register metrics collector")
	}

	accountRepo := accountrepo.NewRepoMem()
	deskRepo := sessionrepo.NewRepoMem()

	accountService := accountservice.New(accountRepo, collector)
	sessionService := sessionservice.New(accountService)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(accountService)
	deskHandler := sessiondelivery.NewHandler(sessionService, deskRepo)

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/:name", accountHandler.Get)

	engine.POST("/transfers", transferHandler.Create)

	engine.POST("/desks", deskHandler.Open)

	deskRoutes := engine.Group("/desks/:id").Use(middleware.DeskLoader(deskRepo))

	deskRoutes.GET("", deskHandler.Get)
	deskRoutes.DELETE("", deskHandler.Close)
	deskRoutes.POST("/accounts", deskHandler.CreateAccount)
	deskRoutes.POST("/select", deskHandler.Select)
	deskRoutes.POST("/deposit", deskHandler.Deposit)
	deskRoutes.POST("/withdraw", deskHandler.Withdraw)
	deskRoutes.POST("/transfer", deskHandler.Transfer)
	deskRoutes.POST("/topup", deskHandler.TopUp)
	deskRoutes.DELETE("/account", deskHandler.DeleteAccount)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	server := &Server{
		Engine:   engine,
		Config:   config,
		Ledger:   accountService,
		Registry: registry,
	}

	return server, nil
}
