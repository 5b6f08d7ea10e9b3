package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/garinger/mp4ium/internal/config"
	"github.com/garinger/mp4ium/internal/transport/web/v1/health"
	"github.com/garinger/mp4ium/internal/transport/web/v1/stream"
	"github.com/garinger/mp4ium/internal/transport/web/v1/upload"
	"github.com/garinger/mp4ium/internal/transport/web/v1/watch"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, deps Deps) (*Server, error) {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	uploadLog := log.New(logger.Writer(), logger.Prefix()+"[upload] ", logger.Flags())
	streamLog := log.New(logger.Writer(), logger.Prefix()+"[stream] ", logger.Flags())
	watchLog := log.New(logger.Writer(), logger.Prefix()+"[watch] ", logger.Flags())

	healthHandler := &health.Handler{Log: healthLog, Storage: deps.Store}
	if deps.Uploads != nil {
		healthHandler.DB = deps.Uploads
	}
	if deps.Cache != nil {
		healthHandler.Cache = deps.Cache
	}

	uploadHandler := &upload.Handler{
		Log:               uploadLog,
		Store:             deps.Store,
		Uploads:           deps.Uploads,
		Cache:             deps.Cache,
		Alloc:             deps.Alloc,
		Sweeper:           deps.Sweeper,
		AcceptedMediaType: cfg.AcceptedMediaType,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		MetaTTLS:          cfg.MetaCacheTTLS,
	}
	streamHandler := &stream.Handler{
		Log:        streamLog,
		Store:      deps.Store,
		Cache:      deps.Cache,
		MediaType:  cfg.AcceptedMediaType,
		ChunkBytes: cfg.StreamChunkBytes,
		MetaTTLS:   cfg.MetaCacheTTLS,
	}
	watchHandler, err := watch.NewHandler(watchLog, deps.Store)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:    cfg.AppPort,
		Handler: newRouter(healthHandler, uploadHandler, streamHandler, watchHandler, logger, cfg.MaxUploadBytes),
		// тела до гигабайта: общий ReadTimeout неприменим, ограничиваем заголовки
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}, nil
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
