package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/mutualaid/internal/app"
	"github.com/mmynk/mutualaid/internal/auth"
	"github.com/mmynk/mutualaid/internal/config"
	"github.com/mmynk/mutualaid/internal/metrics"
	"github.com/mmynk/mutualaid/internal/notify"
	"github.com/mmynk/mutualaid/internal/service"
	"github.com/mmynk/mutualaid/internal/storage"
	"github.com/mmynk/mutualaid/internal/storage/sqlstore"
	"github.com/mmynk/mutualaid/internal/sweeper"
	"github.com/mmynk/mutualaid/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, addr, logLevel string

	flagSet := pflag.NewFlagSet("mutualaid-server", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: $MUTUALAID_CONFIG)")
	flagSet.StringVar(&addr, "addr", "", "listen address, overrides the config")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error, overrides the config")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := logging.Setup(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)

	m := metrics.New()
	a := app.New(store, app.Options{
		DefaultLimits: cfg.DefaultLimits,
		Notifier:      notify.NewLogNotifier(logger),
		Metrics:       m,
	})

	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type",
			"Connect-Protocol-Version", "Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{
			service.HeaderQuotaLimit, service.HeaderQuotaCount, service.HeaderQuotaMax,
		},
		MaxAge: 300,
	}))

	for _, route := range service.Routes(a, authenticator, jwtManager, logger) {
		r.Handle(route.Path+"*", route.Handler)
	}
	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Registered after store.Close, so it runs first.
	defer startSweeper(ctx, a.Sweeper(cfg.SweepInterval))()

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startSweeper runs sw in the background. The returned stop cancels it and
// blocks until the current pass has returned.
func startSweeper(ctx context.Context, sw *sweeper.Sweeper) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Run(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func openStore(ctx context.Context, db config.Database) (storage.Store, error) {
	if db.Driver == config.DriverPostgres {
		store, err := sqlstore.NewPostgres(ctx, db.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := sqlstore.NewSQLite(db.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}
