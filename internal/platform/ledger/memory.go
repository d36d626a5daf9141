package ledger

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store. It is the development
// default and the test double for the domain layer.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Range(_ context.Context, start, end string) (Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pairs []kvPair
	for k, v := range s.data {
		if k < start {
			continue
		}
		if end != "" && k >= end {
			continue
		}
		val := make([]byte, len(v))
		copy(val, v)
		pairs = append(pairs, kvPair{key: k, value: val})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	return newSliceIterator(pairs), nil
}

func (s *MemoryStore) Query(ctx context.Context, prefix string, selector map[string]any) (Iterator, error) {
	it, err := s.Range(ctx, prefix, PrefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var pairs []kvPair
	for it.Next() {
		if matchSelector(it.Value(), selector) {
			pairs = append(pairs, kvPair{key: it.Key(), value: it.Value()})
		}
	}
	return newSliceIterator(pairs), nil
}

func (s *MemoryStore) Close() error { return nil }
