// Package iocache persists precompute results and scoring history.
package iocache

import (
	"errors"
	"sync"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
)

// CacheStoreManager manages the cache and history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewManager opens both stores. An empty backend is treated as none.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) (*CacheStoreManager, error) {
	cache, err := NewCacheStore(cacheTable, orNone(cacheBackend), cacheConnStr)
	if err != nil {
		return nil, err
	}
	history, err := NewHistoryStore(orNone(historyBackend), historyConnStr)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	return &CacheStoreManager{cache: cache, history: history}, nil
}

// GetCacheStore returns the precompute CacheStore.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the scoring HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Close closes both stores.
func (mgr *CacheStoreManager) Close() error {
	mgr.Lock()
	defer mgr.Unlock()
	var errs []error
	if mgr.cache != nil {
		errs = append(errs, mgr.cache.Close())
	}
	if mgr.history != nil {
		errs = append(errs, mgr.history.Close())
	}
	return errors.Join(errs...)
}

func orNone(backend schema.DatabaseBackend) schema.DatabaseBackend {
	if backend == "" {
		return schema.NoneBackend
	}
	return backend
}
