package stream

import (
	"strconv"
	"strings"

	"github.com/garinger/mp4ium/internal/domain"
)

// resolveRange превращает заголовок Range и известный размер артефакта
// в окно [start, end] (границы включительно).
//
// Протокол отдачи требует Range; плеер шлёт "bytes=<start>-", запрошенный
// конец окна игнорируется — окно всегда ограничено чанком:
// end = min(start+chunk-1, size-1).
func resolveRange(hdr string, size, chunk int64) (start, end int64, err error) {
	if hdr == "" {
		return 0, 0, domain.ErrMissingRange
	}
	spec, ok := strings.CutPrefix(hdr, "bytes=")
	if !ok {
		return 0, 0, domain.ErrBadParams
	}
	startStr, _, dash := strings.Cut(spec, "-")
	if !dash || strings.Contains(startStr, ",") {
		// мультидиапазоны не поддерживаем
		return 0, 0, domain.ErrBadParams
	}
	start, perr := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if perr != nil || start < 0 {
		return 0, 0, domain.ErrBadParams
	}
	if start >= size {
		return 0, 0, domain.ErrNotFound
	}
	return start, min(start+chunk-1, size-1), nil
}
