package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garinger/mp4ium/internal/domain"
)

const (
	testSize  = int64(2_500_000)
	testChunk = int64(1_000_000)
)

func TestResolveRange_ChunkLimitedWindows(t *testing.T) {
	tests := []struct {
		name      string
		hdr       string
		wantStart int64
		wantEnd   int64
	}{
		{"first chunk", "bytes=0-", 0, 999_999},
		{"middle chunk", "bytes=1000000-", 1_000_000, 1_999_999},
		{"tail shorter than chunk", "bytes=2000000-", 2_000_000, 2_499_999},
		{"requested end is ignored", "bytes=0-99", 0, 999_999},
		{"last byte", "bytes=2499999-", 2_499_999, 2_499_999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := resolveRange(tt.hdr, testSize, testChunk)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestResolveRange_ContentLengthMatchesWindow(t *testing.T) {
	start, end, err := resolveRange("bytes=2000000-", testSize, testChunk)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), end-start+1)
}

func TestResolveRange_MissingHeader(t *testing.T) {
	_, _, err := resolveRange("", testSize, testChunk)
	assert.ErrorIs(t, err, domain.ErrMissingRange)
}

func TestResolveRange_Malformed(t *testing.T) {
	for _, hdr := range []string{
		"bits=0-",
		"bytes=",
		"bytes=abc-",
		"bytes=-500",
		"bytes=0-100,200-300",
		"bytes=-1-",
	} {
		_, _, err := resolveRange(hdr, testSize, testChunk)
		assert.ErrorIs(t, err, domain.ErrBadParams, "header %q", hdr)
	}
}

func TestResolveRange_StartBeyondSize(t *testing.T) {
	_, _, err := resolveRange("bytes=2500000-", testSize, testChunk)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = resolveRange("bytes=9999999999-", testSize, testChunk)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveRange_SmallFile(t *testing.T) {
	start, end, err := resolveRange("bytes=0-", 10, testChunk)
	require.NoError(t, err)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(9), end)
}
