package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"postboard/internal/config"
	"postboard/internal/core/tx"
	"postboard/internal/domain/auth"
	"postboard/internal/domain/media"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
	"postboard/internal/infrastructure/cache"
	"postboard/internal/infrastructure/filestore"
	v1 "postboard/internal/infrastructure/http/v1"
	"postboard/internal/infrastructure/http/v1/handlers"
	"postboard/internal/infrastructure/http/v1/middleware"
	"postboard/internal/infrastructure/storage/memory"
	"postboard/internal/infrastructure/storage/postgres"
	"postboard/internal/infrastructure/storage/postgres/auth_repo"
	"postboard/internal/infrastructure/storage/postgres/post_repo"
	"postboard/pkg/logger"
)

// app is the wired object graph of one process.
type app struct {
	tokens   *auth.JWTService
	auth     *auth.Service
	media    *media.Service
	posts    *post.Service
	registry *prometheus.Registry
	checks   map[string]handlers.Check

	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type repositories struct {
	users  auth.UserRepository
	posts  post.Repository
	images media.Repository
	txm    tx.Manager
}

func databaseURL(cfg *config.Config) string {
	if cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	d := cfg.Database
	return postgres.BuildDSN(d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode)
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *app, err error) {
	a := &app{
		registry: prometheus.NewRegistry(),
		checks:   map[string]handlers.Check{},
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repos, err := a.openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	files, err := a.openFiles(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var postCache post.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		a.checks["cache"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
		postCache = cache.NewPostCache(rc, cfg.CacheTTL)
		log.Infow("post cache enabled", "ttl", cfg.CacheTTL)
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.AccessTTL
	jwtCfg.RefreshTokenTTL = cfg.RefreshTTL
	a.tokens = auth.NewJWTService(jwtCfg)
	a.auth = auth.NewService(repos.users, a.tokens, auth.ServiceConfig{HashCost: cfg.HashRounds})

	a.media = media.NewService(files, repos.images)
	a.posts = post.NewService(post.Config{
		Posts:     repos.posts,
		Media:     a.media,
		TxManager: repos.txm,
		Composer: query.NewComposer(
			query.WithDefaultTake(cfg.DefaultTake),
			query.WithMaxTake(cfg.MaxTake),
		),
		BaseURL: cfg.PostsURL(),
		Cache:   postCache,
	})
	return a, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on exit")
		store := memory.New()
		return &repositories{
			users:  memory.NewUserRepo(store),
			posts:  memory.NewPostRepo(store),
			images: memory.NewImageRepo(store),
			txm:    memory.NewTxManager(store),
		}, nil

	case config.DriverPostgres:
		poolCfg := postgres.DefaultPoolConfig(databaseURL(cfg))
		if cfg.Database.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Database.MaxConns
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.RegisterMetrics(a.registry); err != nil {
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
		a.checks["database"] = func(ctx context.Context) error { return pool.Ping(ctx) }

		txm := postgres.NewTxManager(pool)
		return &repositories{
			users:  auth_repo.NewUserRepo(txm),
			posts:  post_repo.NewPostRepo(txm),
			images: post_repo.NewImageRepo(txm),
			txm:    txm,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func (a *app) openFiles(ctx context.Context, cfg *config.Config) (media.Store, error) {
	switch cfg.UploadDriver {
	case config.DriverMemory:
		return memory.NewFiles(), nil
	case config.DriverLocal:
		l, err := filestore.NewLocal(cfg.PublicDir)
		if err != nil {
			return nil, err
		}
		return l, nil
	case config.DriverMinio:
		m, err := filestore.NewMinio(ctx, filestore.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, errors.New("unknown upload driver " + cfg.UploadDriver)
}

func (a *app) routerConfig(cfg *config.Config, log *logger.Logger) v1.RouterConfig {
	var limiter *middleware.RateLimiter
	if cfg.AuthRate > 0 {
		limiter = middleware.NewRateLimiter(rate.Limit(cfg.AuthRate), cfg.AuthBurst, 10*time.Minute)
	}
	return v1.RouterConfig{
		Logger:       log,
		Tokens:       a.tokens,
		AuthService:  a.auth,
		PostService:  a.posts,
		MediaService: a.media,
		HealthChecks: a.checks,
		Registry:     a.registry,
		AuthLimiter:  limiter,
	}
}
