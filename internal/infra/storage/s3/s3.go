package s3

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/garinger/mp4ium/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// Storage — реализация domain.ArtifactStore поверх S3/MinIO.
// Альтернативный бэкенд: тот же контракт, что и у дискового стора.
type Storage struct {
	cl     *minio.Client
	bucket string
	logger *log.Logger
}

const tmpPrefix = "tmp/"

const codeNoSuchKey = "NoSuchKey"

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, logger: logger}, nil
}

// Put загружает поток под временный ключ и копированием продвигает под финальный ID,
// чтобы читатели не видели частично записанный объект.
func (s *Storage) Put(ctx context.Context, id string, r io.Reader, mime string) (domain.Artifact, error) {
	if err := validateID(id); err != nil {
		return domain.Artifact{}, err
	}

	tmpKey := tmpPrefix + uuid.NewString()
	if _, err := s.cl.PutObject(ctx, s.bucket, tmpKey, r, -1, minio.PutObjectOptions{
		ContentType: mime,
	}); err != nil {
		return domain.Artifact{}, err
	}

	src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: id}
	if _, err := s.cl.CopyObject(ctx, dst, src); err != nil {
		_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
		return domain.Artifact{}, err
	}
	_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})

	info, err := s.cl.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return domain.Artifact{}, err
	}
	s.logger.Printf("PUT %s: %d bytes", id, info.Size)
	return domain.Artifact{
		ID:                id,
		SizeBytes:         info.Size,
		CreatedAt:         info.LastModified,
		DeclaredMediaType: mime,
	}, nil
}

func (s *Storage) Stat(ctx context.Context, id string) (domain.Artifact, error) {
	if err := validateID(id); err != nil {
		return domain.Artifact{}, err
	}
	info, err := s.cl.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return domain.Artifact{}, s.wrapMinioError(err)
	}
	return domain.Artifact{ID: id, SizeBytes: info.Size, CreatedAt: info.LastModified}, nil
}

func (s *Storage) OpenRange(ctx context.Context, id string, start, end int64) (io.ReadCloser, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	opts := minio.GetObjectOptions{}
	// NB: SetRange принимает включающие границы [start, end]
	if err := opts.SetRange(start, end); err != nil {
		return nil, err
	}
	obj, err := s.cl.GetObject(ctx, s.bucket, id, opts)
	if err != nil {
		return nil, s.wrapMinioError(err)
	}
	return obj, nil
}

func (s *Storage) List(ctx context.Context) ([]domain.Artifact, error) {
	var arts []domain.Artifact
	for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasPrefix(obj.Key, tmpPrefix) {
			continue
		}
		arts = append(arts, domain.Artifact{
			ID:        obj.Key,
			SizeBytes: obj.Size,
			CreatedAt: obj.LastModified,
		})
	}
	return arts, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	// RemoveObject молчит про отсутствующий ключ — проверяем сами ради контракта
	if _, err := s.cl.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		return s.wrapMinioError(err)
	}
	if err := s.cl.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return err
	}
	s.logger.Printf("DEL %s", id)
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("s3: bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *Storage) wrapMinioError(err error) error {
	if minio.ToErrorResponse(err).Code == codeNoSuchKey {
		return domain.ErrNotFound
	}
	return err
}

func validateID(id string) error {
	if id == "" || strings.HasPrefix(id, tmpPrefix) ||
		strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return domain.ErrNotFound
	}
	return nil
}
