// Package server initializes and runs the notekeeper server.
// It selects the storage backend, wires the services, starts the gRPC API
// and the ops HTTP server, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/notekeeper/internal/server/ops"
	"github.com/dmitrijs2005/notekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

// ActivityLogName is the file inside Config.ActivityLogDir that receives
// one JSON line per authenticated call.
const ActivityLogName = "user_actions.log"

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	limiter  ratelimit.Limiter
	metrics  *metrics.Metrics
	activity io.Closer
	grpc     *gs.GRPCServer
}

// NewApp opens every resource the server needs. The caller owns the
// returned App and must call Run, which releases them on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	repos, err := OpenRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	app.repos = repos

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	tokens, err := auth.NewTokenService(c.SecretKey, c.SigningAlgorithm, c.AccessTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("token service init error: %w", err)
	}

	hasher, err := NewHasher(c)
	if err != nil {
		return err
	}

	authn, err := services.NewAuthenticator(app.repos, hasher, tokens)
	if err != nil {
		return fmt.Errorf("authenticator init error: %w", err)
	}
	if err := app.bootstrapSuperuser(ctx, authn); err != nil {
		return err
	}

	if c.RedisAddr != "" {
		l, err := ratelimit.NewRedisLimiter(ctx, c.RedisAddr, c.LoginAttemptLimit, c.LoginAttemptWindow, app.logger)
		if err != nil {
			return fmt.Errorf("rate limiter init error: %w", err)
		}
		app.limiter = l
	} else {
		app.logger.Warn(ctx, "login rate limiting disabled, no redis address configured")
		app.limiter = ratelimit.Noop{}
	}

	f, err := filex.OpenAppend(c.ActivityLogDir, ActivityLogName)
	if err != nil {
		return fmt.Errorf("activity log init error: %w", err)
	}
	app.activity = f

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, gs.Dependencies{
		Authenticator: authn,
		Access:        services.NewAccessController(app.repos, tokens),
		Records:       services.NewRecordService(app.repos),
		Limiter:       app.limiter,
		Metrics:       app.metrics,
		Activity:      logging.NewJSONLogger(f, slog.LevelInfo).With("module", "activity"),
	})
	return nil
}

// bootstrapSuperuser creates the configured Superuser if it does not exist
// yet. Nothing is done when no superuser is configured.
func (app *App) bootstrapSuperuser(ctx context.Context, authn *services.Authenticator) error {
	identity := app.config.SuperuserIdentity
	if identity == "" {
		return nil
	}

	created, err := authn.EnsureSuperuser(ctx, identity, app.config.SuperuserPassword)
	if err != nil {
		return fmt.Errorf("superuser bootstrap error: %w", err)
	}
	if created {
		app.logger.Info(ctx, "superuser created", "identity", identity)
	} else {
		app.logger.Info(ctx, "superuser already exists", "identity", identity)
	}
	return nil
}

// OpenRepositories returns the PostgreSQL store with migrations applied,
// or the in-memory store when no DSN is configured.
func OpenRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory store")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	pg, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := pg.RunMigrations(ctx); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	logger.Info(ctx, "database ready", "backend", "postgres")
	return pg, nil
}

// NewHasher builds the password hasher from the configured Argon2id cost.
func NewHasher(c *config.Config) (*auth.Hasher, error) {
	p := auth.DefaultParams()
	p.MemoryKiB = c.PasswordMemoryKiB
	p.Iterations = c.PasswordIterations
	p.Parallelism = c.PasswordParallelism
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}
	return auth.NewHasher(p), nil
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
	app.logger.Info(ctx, "starting gRPC server", "addr", app.config.EndpointAddrGRPC)
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           ops.NewRouter(app.metrics.Registry(), app.logger),
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "ops server shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting ops HTTP server", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails, then releases every resource opened by NewApp.
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

	app.close(context.Background())
	app.logger.Info(context.Background(), "app stopped")
}

func (app *App) close(ctx context.Context) {
	closers := []struct {
		name string
		c    io.Closer
	}{
		{"activity log", app.activity},
		{"rate limiter", app.limiter},
		{"repositories", app.repos},
	}
	for _, cl := range closers {
		if cl.c == nil {
			continue
		}
		if err := cl.c.Close(); err != nil {
			app.logger.Error(ctx, "close error", "resource", cl.name, "error", err)
		}
	}
}
