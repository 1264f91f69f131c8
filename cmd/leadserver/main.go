// Command leadserver serves the lead store over HTTP. It opens the configured
// backend, ensures the schema, and runs the API with graceful shutdown on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"npileads/internal/api"
	"npileads/internal/config"
	"npileads/internal/emailcheck"
	"npileads/internal/store"
	"npileads/internal/store/postgres"
	"npileads/internal/store/sqlite"
)

const shutdownGrace = 10 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()

	var (
		listenAddr string
		storeKind  string
		dsn        string
		validate   bool
	)
	flag.StringVar(&listenAddr, "listen", cfg.ListenAddr, "bind address for the HTTP server")
	flag.StringVar(&storeKind, "store", cfg.Store, "store backend (postgres or sqlite)")
	flag.StringVar(&dsn, "dsn", cfg.DatabaseURL, "store DSN (overrides env DATABASE_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	cfg.ListenAddr = listenAddr
	cfg.Store = storeKind
	cfg.DatabaseURL = dsn

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Print("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Print("configuration is valid")
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepo(ctx, cfg)
	if err != nil {
		log.Fatalf("leadserver: %v", err)
	}
	defer repo.Close()

	srv := api.New(repo, emailcheck.New(cfg.AbstractEmailAPIKey), cfg.APIKey)
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("leadserver: listening on %s store=%s", cfg.ListenAddr, cfg.Store)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Print("leadserver: shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("leadserver: %v", err)
	}
	log.Print("leadserver: stopped")
}

func openRepo(ctx context.Context, cfg config.Config) (store.Repository, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		repo, err := sqlite.New(ctx, sqlite.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case config.StorePostgres:
		repo, err := postgres.New(ctx, postgres.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store)
	}
}
