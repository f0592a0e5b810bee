// Package app assembles the session client and its stores from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/painel-admin/internal/config"
	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/navigation"
	"github.com/dtroode/painel-admin/internal/repository/postgres"
	"github.com/dtroode/painel-admin/internal/repository/sqlite"
	"github.com/dtroode/painel-admin/internal/service"
	"github.com/dtroode/painel-admin/internal/session"
	"github.com/dtroode/painel-admin/internal/storage/memory"
	storage "github.com/dtroode/painel-admin/internal/storage/minio"
	"github.com/dtroode/painel-admin/internal/storage/redisstore"
	"github.com/dtroode/painel-admin/internal/transport"
)

// App holds the wired components of one CLI run.
type App struct {
	Config    *config.Config
	Client    *session.Client
	Auth      *service.Auth
	Navigator *navigation.Tracker
	Logger    *logger.Logger

	closers []func() error
}

// New builds the stores selected by cfg and a session client on top of
// them. Close releases whatever was opened.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, notifier model.Notifier) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: log,
	}

	tokens, err := a.tokenStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	profiles, err := a.profileStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	httpClient, err := transport.NewHTTPClient(cfg.API.Timeout, cfg.API.CAFileName)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	a.Navigator = navigation.NewTracker(cfg.API.StartPage, log)

	client, err := session.New(cfg.API.BaseURL, httpClient, tokens, profiles, log,
		session.WithNotifier(notifier),
		session.WithNavigator(a.Navigator),
		session.WithLoginPage(cfg.API.LoginPage),
		session.WithRedirectDelay(cfg.API.RedirectDelay),
		session.WithLogout(func(ctx context.Context) { a.Auth.EndSession(ctx) }),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create session client: %w", err)
	}

	a.Client = client
	a.Auth = service.NewAuth(client, log)

	client.SubscribeLocale(func(_ context.Context, change model.LocaleChange) {
		log.Info("App: locale changed",
			"from", change.Previous,
			"to", change.Current)
	})

	return a, nil
}

func (a *App) tokenStore(ctx context.Context) (model.TokenStore, error) {
	cfg := a.Config.TokenStore
	if cfg.Backend != config.BackendRedis {
		return memory.NewTokenStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	a.closers = append(a.closers, rdb.Close)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	tabID := cfg.TabID
	if tabID == "" {
		tabID = uuid.NewString()
	}
	a.Logger.Debug("App: using redis token store",
		"addr", cfg.RedisAddr,
		"tab_id", tabID)
	return redisstore.NewTokenStore(rdb, tabID, cfg.TTL), nil
}

func (a *App) profileStore(ctx context.Context) (model.ProfileStore, error) {
	cfg := a.Config.ProfileStore
	scope := a.Config.API.Scope

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite profile store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return sqlite.NewProfileRepository(db, scope), nil
	case config.BackendPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres profile store: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		return postgres.NewProfileRepository(conn, scope), nil
	default:
		return memory.NewProfileStore(), nil
	}
}

// Files connects to the object storage and returns the file service.
func (a *App) Files(ctx context.Context) (*service.Files, error) {
	cfg := a.Config.Storage

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store, err := storage.NewStore(ctx, minioClient, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return service.NewFiles(a.Client, store, a.Logger), nil
}

// Close releases the stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
