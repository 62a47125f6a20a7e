// Package server initializes and runs the NoteLink server.
// It wires the Postgres-backed repositories, the domain services, and the
// HTTP endpoint, and handles graceful shutdown plus periodic cleanup of
// expired pending shares.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/phonehash"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/config"
	"github.com/notelinkapp/notelink/internal/server/contacts"
	"github.com/notelinkapp/notelink/internal/server/db"
	"github.com/notelinkapp/notelink/internal/server/httpapi"
	"github.com/notelinkapp/notelink/internal/server/shares"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	manager        *db.PostgresRepositoryManager
	accountService *accounts.Service
	contactService *contacts.Service
	shareService   *shares.Service
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	m, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := phonehash.NewHMACStrategy([]byte(cfg.PhoneHashSalt))

	cs := contacts.NewService(m.Conn(), m.ContactFactory(), m.Accounts(), logger, cfg)
	ss := shares.NewService(m.Conn(), m.ShareFactory(), m.ContactFactory(), m.Accounts(), hasher, logger, cfg)
	// The share service resolves pending shares whenever an account links a
	// phone number, so it doubles as the account service's resolver.
	as := accounts.NewService(m.Accounts(), ss, hasher, logger, cfg)

	return &App{
		config:         cfg,
		logger:         logger,
		manager:        m,
		accountService: as,
		contactService: cs,
		shareService:   ss,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.accountService, app.contactService, app.shareService, app.logger)
	router := httpapi.NewRouter(h, []byte(app.config.SecretKey))
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startJanitor periodically removes pending shares that outlived the
// configured TTL without being resolved. A zero TTL disables expiry, and a
// zero interval disables the sweep entirely.
func (app *App) startJanitor(ctx context.Context) {
	if app.config.PendingShareTTL <= 0 || app.config.JanitorInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.shareService.SweepExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "pending share sweep failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired pending shares removed", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startJanitor(ctx)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
