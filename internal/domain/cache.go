package domain

import "context"

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyArtifactMeta(id string) string { return "artmeta:" + id }

// Простой k/v интерфейс. Реализация — Redis; без Redis — NopCache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	Ping(context.Context) error
	Close()
}

// NopCache — заглушка, когда Redis не сконфигурирован.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, nil }

func (NopCache) Set(context.Context, string, []byte, int) error { return nil }

func (NopCache) Del(context.Context, ...string) error { return nil }

func (NopCache) Ping(context.Context) error { return nil }

func (NopCache) Close() {}
