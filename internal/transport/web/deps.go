package web

import (
	"github.com/garinger/mp4ium/internal/domain"
	"github.com/garinger/mp4ium/internal/ident"
)

// Sweeper — то, что транспорту нужно от ретеншена: пнуть после загрузки.
type Sweeper interface {
	Kick()
}

// Deps — инфраструктура, которую сервер раздаёт хендлерам.
// Uploads может быть nil (метаданные — необязательный коллаборатор).
type Deps struct {
	Store   domain.ArtifactStore
	Uploads domain.UploadsRepo
	Cache   domain.Cache
	Alloc   ident.Allocator
	Sweeper Sweeper
}
