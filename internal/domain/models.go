package domain

import "time"

// Артефакт — единица хранения: один загруженный медиафайл.
// ID = "{unixMillis}{.ext}", одновременно ключ в сторидже и токен в URL.
type Artifact struct {
	ID                string    `json:"id"`
	SizeBytes         int64     `json:"size_bytes"`
	CreatedAt         time.Time `json:"created_at"`
	DeclaredMediaType string    `json:"media_type,omitempty"`
}

// Age — возраст артефакта на момент now. Единственное основание для ретеншена.
func (a Artifact) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// Запись во внешнем хранилище метаданных (необязательный коллаборатор):
// оригинальное имя файла и дата загрузки, ключ — ID артефакта.
type UploadRecord struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	MediaType        string    `json:"media_type"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadDate       time.Time `json:"upload_date"`
}
