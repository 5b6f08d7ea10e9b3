// Package ident выделяет идентификаторы артефактов.
//
// Стратегия — интерфейс: таймстемп-схему можно заменить (случайный суффикс,
// монотонный счётчик), не трогая Sink и Resolver.
package ident

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Allocator возвращает идентификатор артефакта по времени приёма
// и имени исходного файла.
type Allocator interface {
	Allocate(t time.Time, filename string) string
}

// TimestampAllocator — схема референса: "{unixMillis}{.ext}".
// Детерминирован; монотонно растёт при нормальных часах.
//
// Известная слабость: две загрузки в одну миллисекунду дают один ID
// (последняя запись побеждает). Референс это не обрабатывает —
// оставлено как есть, смена стратегии решает.
type TimestampAllocator struct{}

func NewTimestamp() *TimestampAllocator { return &TimestampAllocator{} }

func (*TimestampAllocator) Allocate(t time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strconv.FormatInt(t.UnixMilli(), 10) + ext
}
