package domain

import "context"

// Внешнее хранилище метаданных загрузок (документная БД в референсе).
// Коллаборатор без гарантий: стриминг и ретеншен обязаны работать,
// даже если репозиторий недоступен или вовсе не сконфигурирован.
type UploadsRepo interface {
	Close()
	Ping(context.Context) error
	SaveUpload(ctx context.Context, rec UploadRecord) error
	DeleteUpload(ctx context.Context, id string) error
}
