package services

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"

	"salesreport/pkg/contracts/domain"
)

// Fingerprint identifies an uploaded archive by content.
func Fingerprint(archive []byte) string {
	sum := blake2b.Sum256(archive)
	return hex.EncodeToString(sum[:])
}

// datasetCache keeps the most recently parsed datasets, evicting in insertion
// order. Cached datasets are shared and must not be mutated.
type datasetCache struct {
	mu      sync.Mutex
	limit   int
	order   []string
	entries map[string]*domain.SalesDataset
}

func newDatasetCache(limit int) *datasetCache {
	return &datasetCache{
		limit:   limit,
		entries: make(map[string]*domain.SalesDataset),
	}
}

func (c *datasetCache) get(key string) (*domain.SalesDataset, bool) {
	if c.limit <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ds, ok := c.entries[key]
	return ds, ok
}

func (c *datasetCache) put(key string, ds *domain.SalesDataset) {
	if c.limit <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = ds
}

func (c *datasetCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
