package stream_test

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/infra/storage/disk"
	"github.com/garinger/mp4ium/internal/transport/web/v1/stream"
)

const chunk = 1_000_000

func newHandler(t *testing.T) (*stream.Handler, *disk.Store) {
	t.Helper()
	store, err := disk.New(disk.Config{Root: t.TempDir()}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return &stream.Handler{
		Log:        log.New(io.Discard, "", 0),
		Store:      store,
		Cache:      domain.NopCache{},
		MediaType:  "video/mp4",
		ChunkBytes: chunk,
		MetaTTLS:   60,
	}, store
}

func doStream(h *stream.Handler, id, rangeHdr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.SetPathValue("id", id)
	if rangeHdr != "" {
		req.Header.Set("Range", rangeHdr)
	}
	rec := httptest.NewRecorder()
	h.Stream(rec, req)
	return rec
}

func seedArtifact(t *testing.T, store *disk.Store, id string, size int) []byte {
	t.Helper()
	body := make([]byte, size)
	for i := range body {
		body[i] = byte(i % 251)
	}
	_, err := store.Put(context.Background(), id, bytes.NewReader(body), "video/mp4")
	require.NoError(t, err)
	return body
}

func TestStream_FirstChunk(t *testing.T) {
	h, store := newHandler(t)
	body := seedArtifact(t, store, "1693400000000.mp4", 2_500_000)

	rec := doStream(h, "1693400000000.mp4", "bytes=0-")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-999999/2500000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "1000000", rec.Header().Get("Content-Length"))
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, body[:1_000_000], rec.Body.Bytes())
}

func TestStream_TailChunkShorterThanChunkSize(t *testing.T) {
	h, store := newHandler(t)
	body := seedArtifact(t, store, "tail.mp4", 2_500_000)

	rec := doStream(h, "tail.mp4", "bytes=2000000-")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 2000000-2499999/2500000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "500000", rec.Header().Get("Content-Length"))
	assert.Equal(t, body[2_000_000:], rec.Body.Bytes())
}

func TestStream_SeekReturnsBytesAtOffset(t *testing.T) {
	h, store := newHandler(t)
	body := seedArtifact(t, store, "seek.mp4", 50_000)

	rec := doStream(h, "seek.mp4", "bytes=12345-")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, body[12345:], rec.Body.Bytes())
}

func TestStream_MissingRangeHeader(t *testing.T) {
	h, store := newHandler(t)
	seedArtifact(t, store, "norange.mp4", 100)

	rec := doStream(h, "norange.mp4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStream_UnknownID(t *testing.T) {
	h, _ := newHandler(t)

	rec := doStream(h, "1699999999999.mp4", "bytes=0-")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_StartBeyondSize(t *testing.T) {
	h, store := newHandler(t)
	seedArtifact(t, store, "small.mp4", 100)

	rec := doStream(h, "small.mp4", "bytes=100-")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_EvictedArtifactIs404(t *testing.T) {
	h, store := newHandler(t)
	seedArtifact(t, store, "evicted.mp4", 100)
	require.NoError(t, store.Delete(context.Background(), "evicted.mp4"))

	rec := doStream(h, "evicted.mp4", "bytes=0-")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_SuccessiveRequestsAreStateless(t *testing.T) {
	h, store := newHandler(t)
	body := seedArtifact(t, store, "walk.mp4", 2_500_000)

	var got []byte
	for _, start := range []string{"bytes=0-", "bytes=1000000-", "bytes=2000000-"} {
		rec := doStream(h, "walk.mp4", start)
		require.Equal(t, http.StatusPartialContent, rec.Code)
		got = append(got, rec.Body.Bytes()...)
	}
	assert.Equal(t, body, got)
}
