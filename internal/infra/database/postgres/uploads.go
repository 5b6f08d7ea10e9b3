package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/garinger/mp4ium/internal/domain"
)

// SaveUpload фиксирует метаданные загрузки {имя файла, дата}.
// Повторная вставка того же ID перезаписывает запись (last write wins,
// как и в сторидже при коллизии миллисекунды).
func (r *PGRepo) SaveUpload(ctx context.Context, rec domain.UploadRecord) error {
	q := r.qb().Insert(fmt.Sprintf("%s.uploads", r.schema)).
		Columns("id", "original_filename", "media_type", "size_bytes", "upload_date").
		Values(rec.ID, rec.OriginalFilename, rec.MediaType, rec.SizeBytes, rec.UploadDate).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			original_filename = EXCLUDED.original_filename,
			media_type = EXCLUDED.media_type,
			size_bytes = EXCLUDED.size_bytes,
			upload_date = EXCLUDED.upload_date`)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SaveUpload", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("SaveUpload exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("SaveUpload ok in %s id=%s name=%q", time.Since(start), rec.ID, rec.OriginalFilename)
	return nil
}

// DeleteUpload убирает запись вслед за ретеншеном. Отсутствие строки — не ошибка.
func (r *PGRepo) DeleteUpload(ctx context.Context, id string) error {
	q := r.qb().Delete(fmt.Sprintf("%s.uploads", r.schema)).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteUpload", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteUpload exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("DeleteUpload ok in %s id=%s rows=%d", time.Since(start), id, tag.RowsAffected())
	return nil
}
