package watch

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/transport/web/logx"
	"github.com/garinger/mp4ium/internal/transport/web/mw"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Store interface {
	Stat(ctx context.Context, id string) (domain.Artifact, error)
}

// Handler рендерит страницы: главная с формой загрузки, страница просмотра
// со ссылкой на /stream/{id}, страница 404.
type Handler struct {
	Log   *log.Logger
	Store Store
	tpl   *template.Template
}

func NewHandler(logger *log.Logger, store Store) (*Handler, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{Log: logger, Store: store, tpl: tpl}, nil
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", nil)
}

func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	const op = "watch.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id := r.PathValue("id")
	art, err := h.Store.Stat(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "artifact not live", err, "artifact_id", id)
		h.NotFound(w, r)
		return
	}

	logx.Info(h.Log, reqID, op, "render", "artifact_id", art.ID)
	h.render(w, r, http.StatusOK, "watch.html", map[string]any{
		"ID":        art.ID,
		"SizeBytes": art.SizeBytes,
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404.html", nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tpl.ExecuteTemplate(w, name, data); err != nil {
		logx.Error(h.Log, mw.RequestIDFromCtx(r.Context()), "watch.render", "template failed", err,
			"template", name)
	}
}
