package ident_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/garinger/mp4ium/internal/ident"
)

func TestTimestampAllocator_Format(t *testing.T) {
	alloc := ident.NewTimestamp()

	at := time.UnixMilli(1693400000000)
	assert.Equal(t, "1693400000000.mp4", alloc.Allocate(at, "holiday.mp4"))
}

func TestTimestampAllocator_Deterministic(t *testing.T) {
	alloc := ident.NewTimestamp()

	at := time.UnixMilli(1693400000123)
	first := alloc.Allocate(at, "clip.mp4")
	second := alloc.Allocate(at, "clip.mp4")
	assert.Equal(t, first, second)
}

func TestTimestampAllocator_ExtensionHandling(t *testing.T) {
	alloc := ident.NewTimestamp()
	at := time.UnixMilli(1700000000000)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"lowercases extension", "TRIP.MP4", "1700000000000.mp4"},
		{"last extension wins", "archive.tar.mp4", "1700000000000.mp4"},
		{"no extension", "rawvideo", "1700000000000"},
		{"dotfile-ish name", "IMG_0001.mov", "1700000000000.mov"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alloc.Allocate(at, tt.filename))
		})
	}
}

func TestTimestampAllocator_MonotonicAcrossCalls(t *testing.T) {
	alloc := ident.NewTimestamp()

	earlier := alloc.Allocate(time.UnixMilli(1693400000000), "a.mp4")
	later := alloc.Allocate(time.UnixMilli(1693400000001), "b.mp4")
	assert.Less(t, earlier, later)
}
