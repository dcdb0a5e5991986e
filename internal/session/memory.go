package session

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memStore struct{ c *gocache.Cache }

// NewMemoryStore crea un store in-process. Las sesiones mueren con el
// proceso; suficiente para dev y despliegues de una sola instancia.
func NewMemoryStore(defaultTTL time.Duration) Store {
	return &memStore{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memStore) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *memStore) Set(k string, v []byte, ttl time.Duration) { m.c.Set(k, v, ttl) }
func (m *memStore) Delete(k string)                           { m.c.Delete(k) }
