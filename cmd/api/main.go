package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/saminkc999/coinledger/internal/api"
	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/events"
	natsbus "github.com/saminkc999/coinledger/internal/events/nats"
	"github.com/saminkc999/coinledger/internal/infra/logging"
	"github.com/saminkc999/coinledger/internal/repos/document"
	"github.com/saminkc999/coinledger/internal/services/games"
	"github.com/saminkc999/coinledger/internal/services/ledger"
	"github.com/saminkc999/coinledger/pkg/envconf"
	"github.com/saminkc999/coinledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	err := envconf.LoadDotenv(".env")
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	if !domain.IsFinite(cfg.CoinValue) || cfg.CoinValue <= 0 {
		return fmt.Errorf("COIN_VALUE must be positive, got %v", cfg.CoinValue)
	}

	methods, err := domain.NewMethodSet(cfg.PaymentMethods...)
	if err != nil {
		return fmt.Errorf("init payment methods: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	shutdownqueue.Add("store", func(context.Context) error {
		return store.Close()
	})

	var bus events.Bus = events.Noop{}

	if cfg.Events.NATSURL != "" {
		nb, err := natsbus.Connect(cfg.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("connect event bus: %w", err)
		}

		shutdownqueue.Add("event bus", func(context.Context) error {
			return nb.Close()
		})

		bus = nb
	}

	repo := document.NewRepo(store, methods, cfg.Store.MaxAttempts)

	err = repo.Init(ctx)
	if err != nil {
		return fmt.Errorf("init document: %w", err)
	}

	ledgerSrv := ledger.New(repo, ledger.WithBus(bus))
	gameSrv := games.New(repo, cfg.CoinValue, games.WithBus(bus))

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, ledgerSrv, gameSrv)

	// Registered last so it drains before the bus and the store close.
	shutdownqueue.Add("http server", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.Port,
		"store", cfg.Store.Driver,
		"methods", methods.String(),
		"events", cfg.Events.NATSURL != "",
	)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
