package upload_test

import (
	"bytes"
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/ident"
	"github.com/garinger/mp4ium/internal/infra/storage/disk"
	"github.com/garinger/mp4ium/internal/transport/web/v1/upload"
)

type kickCounter struct{ kicks int }

func (k *kickCounter) Kick() { k.kicks++ }

func newHandler(t *testing.T, maxBytes int64) (*upload.Handler, *disk.Store, *kickCounter) {
	t.Helper()
	store, err := disk.New(disk.Config{Root: t.TempDir()}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	sw := &kickCounter{}
	h := &upload.Handler{
		Log:               log.New(io.Discard, "", 0),
		Store:             store,
		Cache:             domain.NopCache{},
		Alloc:             ident.NewTimestamp(),
		Sweeper:           sw,
		AcceptedMediaType: "video/mp4",
		MaxUploadBytes:    maxBytes,
		MetaTTLS:          60,
		Now:               func() time.Time { return time.UnixMilli(1693400000000) },
	}
	return h, store, sw
}

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mpw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mpw.Close())

	return &buf, mpw.FormDataContentType()
}

func doUpload(h *upload.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func TestUpload_AcceptedAndRedirects(t *testing.T) {
	h, store, sw := newHandler(t, 1<<20)
	payload := bytes.Repeat([]byte("mp4!"), 2048)
	body, ct := multipartBody(t, upload.FieldName, "holiday.mp4", "video/mp4", payload)

	rec := doUpload(h, body, ct)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/watch/1693400000000.mp4", rec.Header().Get("Location"))
	assert.Equal(t, 1, sw.kicks, "successful upload must kick the sweeper once")

	art, err := store.Stat(context.Background(), "1693400000000.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), art.SizeBytes)

	rc, err := store.OpenRange(context.Background(), art.ID, 0, art.SizeBytes-1)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestUpload_RejectsWrongMediaType(t *testing.T) {
	h, store, sw := newHandler(t, 1<<20)
	body, ct := multipartBody(t, upload.FieldName, "clip.avi", "video/avi", []byte("riff data"))

	rec := doUpload(h, body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"), "rejected upload must not return an identifier")
	assert.Zero(t, sw.kicks, "rejected upload must not kick the sweeper")

	arts, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, arts, "storage namespace must be unchanged")
}

func TestUpload_RejectsOversizedPayload(t *testing.T) {
	h, store, sw := newHandler(t, 64) // потолок 64 байта
	body, ct := multipartBody(t, upload.FieldName, "big.mp4", "video/mp4", bytes.Repeat([]byte("x"), 65))

	rec := doUpload(h, body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, sw.kicks)

	arts, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, arts, "no partial artifact may remain visible")
}

func TestUpload_PayloadAtCeilingIsAccepted(t *testing.T) {
	h, _, _ := newHandler(t, 64)
	body, ct := multipartBody(t, upload.FieldName, "exact.mp4", "video/mp4", bytes.Repeat([]byte("x"), 64))

	rec := doUpload(h, body, ct)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestUpload_MissingField(t *testing.T) {
	h, _, _ := newHandler(t, 1<<20)
	body, ct := multipartBody(t, "some-other-field", "clip.mp4", "video/mp4", []byte("data"))

	rec := doUpload(h, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_NotMultipart(t *testing.T) {
	h, _, _ := newHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("raw body")))
	req.Header.Set("Content-Type", "video/mp4")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_MetadataFailureDoesNotFailUpload(t *testing.T) {
	h, store, _ := newHandler(t, 1<<20)
	h.Uploads = failingRepo{}
	body, ct := multipartBody(t, upload.FieldName, "ok.mp4", "video/mp4", []byte("data"))

	rec := doUpload(h, body, ct)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err := store.Stat(context.Background(), "1693400000000.mp4")
	assert.NoError(t, err)
}

// failingRepo имитирует недоступную БД метаданных.
type failingRepo struct{}

func (failingRepo) Close()                     {}
func (failingRepo) Ping(context.Context) error { return context.DeadlineExceeded }
func (failingRepo) SaveUpload(context.Context, domain.UploadRecord) error {
	return context.DeadlineExceeded
}
func (failingRepo) DeleteUpload(context.Context, string) error { return context.DeadlineExceeded }
