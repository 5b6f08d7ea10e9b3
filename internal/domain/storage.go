package domain

import (
	"context"
	"io"
)

// Хранилище артефактов (локальный диск или S3/MinIO).
// Реализации обязаны быть безопасны для конкурентного использования
// и возвращать ErrNotFound для отсутствующих ID.
type ArtifactStore interface {
	// Запись нового артефакта под финальным ID. Видимость атомарна:
	// читатель никогда не наблюдает частично записанный файл под финальным ID.
	Put(ctx context.Context, id string, r io.Reader, mime string) (Artifact, error)
	// Метаданные (размер, время создания) без тела.
	Stat(ctx context.Context, id string) (Artifact, error)
	// Поток ровно для байтового окна [start, end] (границы включительно).
	OpenRange(ctx context.Context, id string, start, end int64) (io.ReadCloser, error)
	// Перечисление всех живых артефактов (для ретеншена).
	List(ctx context.Context) ([]Artifact, error)
	// Удаление. Идемпотентно: отсутствующий ID — ErrNotFound, не сбой.
	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
