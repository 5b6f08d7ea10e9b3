package web

import (
	"log"
	"net/http"

	"github.com/garinger/mp4ium/internal/transport/web/mw"
	"github.com/garinger/mp4ium/internal/transport/web/v1/health"
	"github.com/garinger/mp4ium/internal/transport/web/v1/stream"
	"github.com/garinger/mp4ium/internal/transport/web/v1/upload"
	"github.com/garinger/mp4ium/internal/transport/web/v1/watch"
)

func newRouter(hh *health.Handler, uh *upload.Handler, sh *stream.Handler, wh *watch.Handler, logger *log.Logger, maxUpload int64) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /v1/readyz", hh.Readiness)

	// пайплайн приём → отдача
	// запас поверх потолка — multipart-обрамление не считается телом файла
	mux.HandleFunc("POST /upload", limitBody(maxUpload+(1<<20), uh.Upload))
	mux.HandleFunc("GET /stream/{id}", sh.Stream)

	// страницы
	mux.HandleFunc("GET /watch/{id}", wh.Watch)
	mux.HandleFunc("GET /{$}", wh.Index)
	mux.HandleFunc("/", wh.NotFound)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
