// Package cache holds process-wide query results for parsed tag
// indexes, keyed by project root and query key. Invalidation is a full
// per-root clear: rebuilds are infrequent and clearing is cheap, and it
// guarantees no stale reads after a rebuild.
package cache

import (
	"sync"

	"tagnav/internal/tags"
)

// Grouped is a cached query result: records grouped by symbol or by
// filename, depending on the query.
type Grouped map[string][]tags.Record

// Service owns the cache state. Construct one per process and pass it
// to callers that need cached lookups.
type Service struct {
	mu    sync.RWMutex
	roots map[string]map[string]Grouped
}

// NewService returns an empty cache.
func NewService() *Service {
	return &Service{roots: make(map[string]map[string]Grouped)}
}

// GetOrCompute returns the cached result for (root, key), computing and
// storing it on a miss. Concurrent misses may compute more than once;
// the last result stored wins, which is harmless for read-only index
// queries.
func (s *Service) GetOrCompute(root, key string, compute func() (Grouped, error)) (Grouped, error) {
	s.mu.RLock()
	if byKey, ok := s.roots[root]; ok {
		if result, ok := byKey[key]; ok {
			s.mu.RUnlock()
			return result, nil
		}
	}
	s.mu.RUnlock()

	result, err := compute()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	byKey, ok := s.roots[root]
	if !ok {
		byKey = make(map[string]Grouped)
		s.roots[root] = byKey
	}
	byKey[key] = result
	s.mu.Unlock()

	return result, nil
}

// Invalidate clears every cached entry under root.
func (s *Service) Invalidate(root string) {
	s.mu.Lock()
	delete(s.roots, root)
	s.mu.Unlock()
}

// Len returns the number of cached entries under root.
func (s *Service) Len(root string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roots[root])
}
