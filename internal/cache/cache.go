package cache

import (
	"time"

	"github.com/viccon/sturdyc"
)

// Store is the minimal cache contract the export pipeline needs. Entries
// expire after the store's fixed TTL; deleting an absent key is a no-op.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

const (
	defaultCapacity = 1024
	numShards       = 64
	evictionPercent = 10
)

type memoryStore struct {
	client *sturdyc.Client[any]
}

// NewMemory returns an in-process Store whose entries live for ttl.
func NewMemory(ttl time.Duration) Store {
	return &memoryStore{
		client: sturdyc.New[any](defaultCapacity, numShards, ttl, evictionPercent),
	}
}

func (s *memoryStore) Get(key string) (any, bool) {
	return s.client.Get(key)
}

func (s *memoryStore) Set(key string, value any) {
	s.client.Set(key, value)
}

func (s *memoryStore) Delete(key string) {
	s.client.Delete(key)
}
