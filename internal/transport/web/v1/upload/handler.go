package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/ident"
	"github.com/garinger/mp4ium/internal/transport/web/logx"
	"github.com/garinger/mp4ium/internal/transport/web/mw"
	v1 "github.com/garinger/mp4ium/internal/transport/web/v1"
)

// FieldName — имя multipart-поля с медиапотоком (как в референсной форме).
const FieldName = "video-upload"

type Store interface {
	Put(ctx context.Context, id string, r io.Reader, mime string) (domain.Artifact, error)
}

type Sweeper interface {
	Kick()
}

type Handler struct {
	Log     *log.Logger
	Store   Store
	Uploads domain.UploadsRepo // может быть nil
	Cache   domain.Cache
	Alloc   ident.Allocator
	Sweeper Sweeper

	AcceptedMediaType string
	MaxUploadBytes    int64
	MetaTTLS          int // секунд
	Now               func() time.Time
}

// Upload валидирует загрузку (заявленный тип, потолок размера), пишет тело
// в сторидж под выделенным ID и редиректит на страницу просмотра.
// Отклонённая загрузка не оставляет ничего видимого и не пинает свип.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "upload.post"
	reqID := mw.RequestIDFromCtx(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		// MaxBytesReader в роутере режет тело целиком
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			logx.Error(h.Log, reqID, op, "body over limit", err)
			v1.WriteDomainError(w, r, domain.ErrPayloadTooLarge)
			return
		}
		logx.Error(h.Log, reqID, op, "parse form failed", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	file, hdr, err := r.FormFile(FieldName)
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing field", err, "field", FieldName)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer file.Close()

	declared, err := h.validateMediaType(hdr)
	if err != nil {
		logx.Error(h.Log, reqID, op, "media type rejected", err,
			"declared", hdr.Header.Get("Content-Type"), "filename", hdr.Filename)
		v1.WriteDomainError(w, r, err)
		return
	}
	if hdr.Size > h.MaxUploadBytes {
		logx.Error(h.Log, reqID, op, "payload over ceiling", domain.ErrPayloadTooLarge,
			"size", hdr.Size, "ceiling", h.MaxUploadBytes)
		v1.WriteDomainError(w, r, domain.ErrPayloadTooLarge)
		return
	}

	id := h.Alloc.Allocate(h.now(), hdr.Filename)
	art, err := h.Store.Put(r.Context(), id, file, declared)
	if err != nil {
		logx.Error(h.Log, reqID, op, "storage put failed", err, "artifact_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// метаданные и кеш — best effort, ядро от них не зависит
	if h.Uploads != nil {
		rec := domain.UploadRecord{
			ID:               art.ID,
			OriginalFilename: hdr.Filename,
			MediaType:        declared,
			SizeBytes:        art.SizeBytes,
			UploadDate:       art.CreatedAt,
		}
		if err := h.Uploads.SaveUpload(r.Context(), rec); err != nil {
			logx.Error(h.Log, reqID, op, "metadata save failed", err, "artifact_id", art.ID)
		}
	}
	if buf, err := json.Marshal(art); err == nil {
		_ = h.Cache.Set(r.Context(), domain.CacheKeyArtifactMeta(art.ID), buf, h.MetaTTLS)
	}

	// эвикция — фоновая задача, не задерживает ответ
	if h.Sweeper != nil {
		h.Sweeper.Kick()
	}

	logx.Info(h.Log, reqID, op, "stored",
		"artifact_id", art.ID, "size", art.SizeBytes, "filename", hdr.Filename)
	http.Redirect(w, r, "/watch/"+url.PathEscape(art.ID), http.StatusSeeOther)
}

// validateMediaType — единственная именованная стадия проверки типа:
// заявленный Content-Type части сверяется с принимаемым, байты не
// инспектируются (как в референсе; сюда позже встаёт сниффинг).
func (h *Handler) validateMediaType(hdr *multipart.FileHeader) (string, error) {
	declared, _, err := mime.ParseMediaType(hdr.Header.Get("Content-Type"))
	if err != nil || declared != h.AcceptedMediaType {
		return "", domain.ErrInvalidMediaType
	}
	return declared, nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
