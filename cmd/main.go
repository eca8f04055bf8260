// Package main runs the personal ledger either as an interactive console or as
// the desk HTTP server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/consoledelivery"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	in := bufio.NewReader(os.Stdin)

	if config.Mode == "" {
		config.Mode = chooseMode(in, os.Stdout)
		if config.Mode == "" {
			fmt.Println("Invalid selection")
			return
		}
	}

	logger := middleware.GetLogger(config)

	switch config.Mode {
	case configpkg.ModeConsole:
		err = runConsole(logger, in, os.Stdout)
	case configpkg.ModeDesk:
		err = runDesk(logger, config)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("mode", config.Mode).Msg("ledger stopped")
	}
}

// chooseMode asks which front-end to start. It returns an empty string for an
// unknown answer. Only the answer line is consumed from in.
func chooseMode(in *bufio.Reader, out io.Writer) string {
	fmt.Fprintln(out, "Banking Application")
	fmt.Fprintln(out, "1. Console version")
	fmt.Fprintln(out, "2. Desk (HTTP) version")
	fmt.Fprint(out, "Select version (1 or 2): ")

	answer, err := in.ReadString('\n')
	if err != nil && answer == "" {
		return ""
	}

	switch strings.TrimSpace(answer) {
	case "1":
		return configpkg.ModeConsole
	case "2":
		return configpkg.ModeDesk
	}

	return ""
}

func runConsole(logger zerolog.Logger, in io.Reader, out io.Writer) error {
	ctx := logger.WithContext(context.Background())

	ledger := accountservice.New(accountrepo.NewRepoMem(), nil)
	console := consoledelivery.New(in, out, sessionservice.New(ledger))

	return console.Run(ctx)
}

func runDesk(logger zerolog.Logger, config configpkg.Config) error {
	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := httpserver.New(logger, config)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("address", config.ServerAddress).Msg("LEDGER DESK SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
