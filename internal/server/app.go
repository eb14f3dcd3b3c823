// Package server initializes and runs the gateway application: it wires the
// credential store, the crypto oracle client and the protocol service, and
// starts the HTTP server with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/itoqsky/credshield/internal/logging"
	"github.com/itoqsky/credshield/internal/server/config"
	"github.com/itoqsky/credshield/internal/server/httpapi"
	"github.com/itoqsky/credshield/internal/server/migrations"
	"github.com/itoqsky/credshield/internal/server/oracle"
	credrepo "github.com/itoqsky/credshield/internal/server/repositories/credentials"
	"github.com/itoqsky/credshield/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repo, db, err := newRepository(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	oracleClient, err := oracle.New(cfg.OracleBaseURL,
		oracle.WithTimeout(cfg.OracleTimeout),
		oracle.WithAPIKey(cfg.OracleAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("oracle client init error: %w", err)
	}

	protocol := services.NewProtocolService(oracleClient, repo, logger, cfg.SecretKey, cfg.TokenValidityDuration)
	srv := httpapi.NewServer(cfg.EndpointAddr, logger, protocol, cfg.SecretKey)

	return &App{config: cfg, logger: logger, db: db, httpServer: srv}, nil
}

// newRepository selects the credential store: PostgreSQL when a DSN is
// configured (running migrations first), the in-memory store otherwise.
// The returned *sql.DB is nil for the in-memory store; the caller owns
// closing it.
func newRepository(ctx context.Context, cfg *config.Config) (credrepo.Repository, *sql.DB, error) {
	if cfg.DatabaseDSN == "" {
		return credrepo.NewMemoryRepository(), nil, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return credrepo.NewPostgresRepository(db), db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "error closing database", "error", err)
		}
	}
}
