package selectors

import "sync"

// memo caches one derived value per distinct argument, keyed on the store
// revision the value was computed against. A hit requires both the revision
// and the argument to match. The revision is sampled again after computing:
// if a mutation landed mid-computation the value is returned but not cached,
// so a torn read can never be served under a revision it does not belong to.
type memo[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]memoEntry[V]
}

type memoEntry[V any] struct {
	revision uint64
	value    V
}

func newMemo[K comparable, V any]() *memo[K, V] {
	return &memo[K, V]{entries: make(map[K]memoEntry[V])}
}

// get returns the cached value for the current revision and key, computing
// it on a miss. revision must be monotonic (the store's mutation counter).
func (m *memo[K, V]) get(revision func() uint64, key K, compute func() V) V {
	rev := revision()

	m.mu.Lock()
	if e, ok := m.entries[key]; ok && e.revision == rev {
		m.mu.Unlock()
		return e.value
	}
	m.mu.Unlock()

	v := compute()

	if revision() == rev {
		m.mu.Lock()
		m.entries[key] = memoEntry[V]{revision: rev, value: v}
		m.mu.Unlock()
	}
	return v
}
