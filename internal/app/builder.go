package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/garinger/mp4ium/internal/config"
	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/ident"
	redisx "github.com/garinger/mp4ium/internal/infra/cache/redis"
	"github.com/garinger/mp4ium/internal/infra/database/postgres"
	"github.com/garinger/mp4ium/internal/infra/storage/disk"
	s3storage "github.com/garinger/mp4ium/internal/infra/storage/s3"
	"github.com/garinger/mp4ium/internal/retention"
	"github.com/garinger/mp4ium/internal/transport/web"
)

type App struct {
	config  *config.Config
	server  *web.Server
	log     *log.Logger
	store   domain.ArtifactStore
	cache   domain.Cache
	repo    domain.UploadsRepo
	sweeper *retention.Sweeper
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	storeLog := log.New(base.Writer(), base.Prefix()+"[storage] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	sweepLog := log.New(base.Writer(), base.Prefix()+"[retention] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Printf("init %s storage", cfg.StorageBackend)
	var store domain.ArtifactStore
	switch cfg.StorageBackend {
	case "s3":
		s3cfg := s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}
		store, err = s3storage.New(ctx, s3cfg, storeLog)
	default:
		store, err = disk.New(disk.Config{Root: cfg.StorageRoot}, storeLog)
	}
	if err != nil {
		return nil, fmt.Errorf("failed init storage: %w", err)
	}
	base.Println("storage is initialized")

	// Postgres для метаданных — опционален: без DB_HOST работаем без него
	var repo domain.UploadsRepo
	if cfg.HasDB() {
		base.Println("init PostgreSQL")
		pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
		if err != nil {
			return nil, fmt.Errorf("failed init postgres: %w", err)
		}
		repo = pgRepo
		base.Println("PostgreSQL is initialized")
	} else {
		base.Println("PostgreSQL is not configured, metadata disabled")
	}

	// Redis — опционален: без него кеш метаданных выключен
	var cache domain.Cache = domain.NopCache{}
	if cfg.HasRedis() {
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, redisLog)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		cache = rc
		base.Println("Redis is initialized")
	} else {
		base.Println("Redis is not configured, meta cache disabled")
	}

	sweeper := retention.New(retention.Config{
		TTL: time.Duration(cfg.RetentionTTLMs) * time.Millisecond,
	}, store, repo, cache, sweepLog)

	base.Println("init Server")
	server, err := web.New(serverLog, cfg, web.Deps{
		Store:   store,
		Uploads: repo,
		Cache:   cache,
		Alloc:   ident.NewTimestamp(),
		Sweeper: sweeper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed init server: %w", err)
	}
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config:  cfg,
		server:  server,
		log:     base,
		store:   store,
		cache:   cache,
		repo:    repo,
		sweeper: sweeper,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go a.sweeper.Run(sweepCtx)
	go a.server.Run()

	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	stopSweeper()
	if a.repo != nil {
		a.repo.Close()
	}
	a.cache.Close()

	return nil
}
