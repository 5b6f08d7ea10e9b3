package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/transport/web/logx"
	"github.com/garinger/mp4ium/internal/transport/web/mw"
	v1 "github.com/garinger/mp4ium/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

// DB и Cache могут быть nil — коллабораторы опциональны.
type Handler struct {
	Log     *log.Logger
	Storage Pinger
	DB      Pinger
	Cache   Pinger
}

// Liveness — жив ли сервис (не зависит от сториджа/БД/кэша)
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, "ok")
}

// Readiness — готовность: сторидж обязателен, БД и кэш — если сконфигурированы
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Storage.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "storage ping failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "db ping failed", err)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
	}

	if h.Cache != nil {
		if err := h.Cache.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "cache ping failed", err)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteOKData(w, r, "ready")
}
