package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/garinger/mp4ium/internal/domain"
)

type Config struct {
	Root string
}

// Store — хранилище артефактов на локальном диске: один файл на артефакт,
// имя файла = ID. Временные записи живут в подкаталоге tmp и становятся
// видимыми только после rename.
type Store struct {
	logger *log.Logger
	root   string
}

const tmpDir = "tmp"

func New(cfg Config, logger *log.Logger) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("disk: empty storage root")
	}
	if err := os.MkdirAll(filepath.Join(cfg.Root, tmpDir), 0o755); err != nil {
		return nil, fmt.Errorf("disk: prepare root: %w", err)
	}
	return &Store{root: cfg.Root, logger: logger}, nil
}

// Put пишет тело во временный файл и атомарно продвигает его под финальный ID.
// CreatedAt = mtime временного файла: он фиксируется последней записью
// и переживает rename, т.е. равен моменту завершения загрузки.
func (s *Store) Put(ctx context.Context, id string, r io.Reader, mime string) (domain.Artifact, error) {
	if err := validateID(id); err != nil {
		return domain.Artifact{}, err
	}

	tmp := filepath.Join(s.root, tmpDir, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("disk: create tmp: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return domain.Artifact{}, fmt.Errorf("disk: write tmp: %w", err)
	}

	final := filepath.Join(s.root, id)
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return domain.Artifact{}, fmt.Errorf("disk: promote: %w", err)
	}

	st, err := os.Stat(final)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("disk: stat after promote: %w", err)
	}
	s.logger.Printf("PUT %s: %d bytes", id, n)
	return domain.Artifact{
		ID:                id,
		SizeBytes:         st.Size(),
		CreatedAt:         st.ModTime(),
		DeclaredMediaType: mime,
	}, nil
}

func (s *Store) Stat(ctx context.Context, id string) (domain.Artifact, error) {
	if err := validateID(id); err != nil {
		return domain.Artifact{}, err
	}
	st, err := os.Stat(filepath.Join(s.root, id))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Artifact{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("disk: stat %s: %w", id, err)
	}
	return domain.Artifact{ID: id, SizeBytes: st.Size(), CreatedAt: st.ModTime()}, nil
}

// OpenRange открывает поток ровно на окно [start, end] (включительно).
// Читатель ограничен длиной окна, файл закрывается вместе с потоком.
func (s *Store) OpenRange(ctx context.Context, id string, start, end int64) (io.ReadCloser, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", id, err)
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("disk: seek %s to %d: %w", id, start, err)
	}
	return &windowReader{r: io.LimitReader(f, end-start+1), f: f}, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Artifact, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("disk: list: %w", err)
	}
	arts := make([]domain.Artifact, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() { // в т.ч. каталог tmp
			continue
		}
		info, err := e.Info()
		if err != nil {
			// файл мог быть удалён конкурентным свипом между ReadDir и Info
			continue
		}
		arts = append(arts, domain.Artifact{
			ID:        e.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return arts, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, id))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("disk: delete %s: %w", id, err)
	}
	s.logger.Printf("DEL %s", id)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.root)
	return err
}

// ID приходит из URL — не даём выйти за пределы корня.
func validateID(id string) error {
	if id == "" || id == tmpDir ||
		strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return domain.ErrNotFound
	}
	return nil
}

type windowReader struct {
	r io.Reader
	f *os.File
}

func (w *windowReader) Read(p []byte) (int, error) { return w.r.Read(p) }
func (w *windowReader) Close() error               { return w.f.Close() }
