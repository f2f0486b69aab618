// Package server wires the gophfeed application together: database and
// migrations, services, the REST API and the gRPC operations endpoint. It
// also handles graceful shutdown.
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

	"github.com/dmitrijs2005/gophfeed/internal/cryptox"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/auth"
	"github.com/dmitrijs2005/gophfeed/internal/server/config"
	"github.com/dmitrijs2005/gophfeed/internal/server/metrics"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophfeed/internal/server/rest"
	"github.com/dmitrijs2005/gophfeed/internal/server/services"
	"github.com/dmitrijs2005/gophfeed/internal/server/storage"

	gs "github.com/dmitrijs2005/gophfeed/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	gate   *auth.Gate
	http   *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	avatars, err := storage.NewAvatarStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("avatar store: %w", err)
	}

	m := metrics.New()
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenValidityDuration)
	gate := auth.NewGate(tokens, rm.Users(db), logger, m)

	us := services.NewUserService(db, rm, tokens, cryptox.NewHasher(c.BcryptCost), avatars, logger)
	ps := services.NewPostService(db, rm, logger)
	ledger := services.NewLedger(db, rm, m, logger)

	handler := rest.NewHandler(rest.Deps{
		Users:    us,
		Posts:    ps,
		Ledger:   ledger,
		Gate:     gate,
		Observer: m,
		DB:       db,
		Metrics:  m.Handler(),
		Logger:   logger,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		gate:   gate,
		http:   rest.NewHTTPServer(c.EndpointAddrHTTP, handler.Router(), logger, c.ShutdownTimeout),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.gate, app.db, 0)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives, ctx is cancelled, or either
// server fails; then both servers stop and the database is closed.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
