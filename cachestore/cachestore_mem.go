package cachestore

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memCacheItem struct {
	val       string
	expiresAt time.Time
}

type MemCacheStore struct {
	Data *lru.Cache[string, memCacheItem]
	TTL  time.Duration
}

var _ CacheStore = (*MemCacheStore)(nil)

func NewMemCacheStore(capacity int, ttl time.Duration) *MemCacheStore {
	data, err := lru.New[string, memCacheItem](capacity)
	if err != nil {
		// only possible with a non-positive capacity
		panic(err)
	}
	return &MemCacheStore{
		Data: data,
		TTL:  ttl,
	}
}

func (s *MemCacheStore) Get(ctx context.Context, name, key string) (string, bool, error) {
	k := name + "/" + key
	item, ok := s.Data.Get(k)
	if !ok {
		return "", false, nil
	}
	if time.Now().After(item.expiresAt) {
		s.Data.Remove(k)
		return "", false, nil
	}
	return item.val, true, nil
}

func (s *MemCacheStore) Set(ctx context.Context, name, key, val string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.TTL
	}
	s.Data.Add(name+"/"+key, memCacheItem{
		val:       val,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (s *MemCacheStore) Purge(ctx context.Context, name, key string) error {
	s.Data.Remove(name + "/" + key)
	return nil
}
