package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/transport/web/logx"
	"github.com/garinger/mp4ium/internal/transport/web/mw"
	v1 "github.com/garinger/mp4ium/internal/transport/web/v1"
)

type Store interface {
	Stat(ctx context.Context, id string) (domain.Artifact, error)
	OpenRange(ctx context.Context, id string, start, end int64) (io.ReadCloser, error)
}

type Handler struct {
	Log   *log.Logger
	Store Store
	Cache domain.Cache

	MediaType  string // Content-Type всех ответов стриминга
	ChunkBytes int64
	MetaTTLS   int // секунд
}

// Stream отдаёт 206 с чанк-лимитированным окном байтов.
// Каждый запрос самостоятелен: плеер сдвигает start при перемотке,
// серверного состояния между запросами нет.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	const op = "stream.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id := r.PathValue("id")
	art, err := h.statCached(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "stat failed", err, "artifact_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	start, end, err := resolveRange(r.Header.Get("Range"), art.SizeBytes, h.ChunkBytes)
	if err != nil {
		logx.Error(h.Log, reqID, op, "range not resolvable", err,
			"artifact_id", id, "range", r.Header.Get("Range"))
		v1.WriteDomainError(w, r, err)
		return
	}

	rc, err := h.Store.OpenRange(r.Context(), id, start, end)
	if err != nil {
		// артефакт мог быть выметен между Stat и Open
		logx.Error(h.Log, reqID, op, "open failed", err, "artifact_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	defer rc.Close()

	contentLen := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, art.SizeBytes))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(contentLen, 10))
	w.Header().Set("Content-Type", h.MediaType)
	w.WriteHeader(http.StatusPartialContent)

	// окно копируется потоково; обрыв (в т.ч. эвикция на лету) — беда
	// только этого клиента
	if n, err := io.Copy(w, rc); err != nil {
		logx.Error(h.Log, reqID, op, "stream aborted", err,
			"artifact_id", id, "sent", n, "want", contentLen)
		return
	}
	logx.Info(h.Log, reqID, op, "partial content",
		"artifact_id", id, "start", start, "end", end, "len", contentLen)
}

// statCached — cache-aside над Store.Stat: размер читается на каждый
// range-запрос, кеш убирает лишний Stat. Промахи и сбои кеша не фатальны.
func (h *Handler) statCached(ctx context.Context, id string) (domain.Artifact, error) {
	key := domain.CacheKeyArtifactMeta(id)
	if b, err := h.Cache.Get(ctx, key); err == nil && len(b) > 0 {
		var cached domain.Artifact
		if err := json.Unmarshal(b, &cached); err == nil && cached.ID == id {
			return cached, nil
		}
	}

	art, err := h.Store.Stat(ctx, id)
	if err != nil {
		return domain.Artifact{}, err
	}
	if buf, err := json.Marshal(art); err == nil {
		_ = h.Cache.Set(ctx, key, buf, h.MetaTTLS)
	}
	return art, nil
}
