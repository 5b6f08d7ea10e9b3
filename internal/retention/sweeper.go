// Package retention удаляет артефакты старше TTL.
//
// Свип — фоновая задача: загрузка по завершении шлёт "пинок" в канал,
// цикл Run обслуживает его вне цикла запрос-ответ. Латентность эвикции
// зависит от частоты загрузок — это liveness-свойство, не гарантия.
package retention

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/garinger/mp4ium/internal/domain"
)

type Config struct {
	TTL time.Duration
	// Источник времени; nil — time.Now. Подменяется в тестах.
	Now func() time.Time
}

type Sweeper struct {
	logger  *log.Logger
	store   domain.ArtifactStore
	uploads domain.UploadsRepo // может быть nil: метаданные — необязательный коллаборатор
	cache   domain.Cache
	ttl     time.Duration
	now     func() time.Time
	kicks   chan struct{}
}

func New(cfg Config, store domain.ArtifactStore, uploads domain.UploadsRepo, cache domain.Cache, logger *log.Logger) *Sweeper {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cache == nil {
		cache = domain.NopCache{}
	}
	return &Sweeper{
		logger:  logger,
		store:   store,
		uploads: uploads,
		cache:   cache,
		ttl:     cfg.TTL,
		now:     now,
		kicks:   make(chan struct{}, 1),
	}
}

// Kick запрашивает свип, не блокируя вызывающего.
// Пинок в уже ожидающий свип схлопывается.
func (s *Sweeper) Kick() {
	select {
	case s.kicks <- struct{}{}:
	default:
	}
}

// Run обслуживает пинки до отмены контекста. На старте — один свип,
// чтобы подобрать протухшее после простоя процесса.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Println("started")
	s.sweepLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Println("stopped")
			return
		case <-s.kicks:
			s.sweepLogged(ctx)
		}
	}
}

func (s *Sweeper) sweepLogged(ctx context.Context) {
	evicted, err := s.SweepOnce(ctx)
	if err != nil {
		s.logger.Printf("sweep failed: %v", err)
		return
	}
	if evicted > 0 {
		s.logger.Printf("sweep done: evicted=%d", evicted)
	}
}

// SweepOnce перечисляет артефакты и удаляет те, чей возраст >= TTL.
// Сбой удаления одного артефакта логируется и не прерывает остальных;
// повторный свип без новых загрузок ничего дополнительно не удаляет.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	arts, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	evicted := 0
	for _, a := range arts {
		if a.Age(now) < s.ttl {
			continue
		}
		if err := s.store.Delete(ctx, a.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// конкурентный свип успел раньше — не сбой
				continue
			}
			s.logger.Printf("evict %s failed: %v", a.ID, err)
			continue
		}
		s.logger.Printf("%s removed (age=%s)", a.ID, a.Age(now).Truncate(time.Second))
		evicted++

		// метаданные и кеш — best effort
		_ = s.cache.Del(ctx, domain.CacheKeyArtifactMeta(a.ID))
		if s.uploads != nil {
			if err := s.uploads.DeleteUpload(ctx, a.ID); err != nil {
				s.logger.Printf("evict %s: metadata delete failed: %v", a.ID, err)
			}
		}
	}
	return evicted, nil
}
