package lifedb

import (
	"slices"
	"sort"
	"strings"
	"sync"
)

type memStorage struct {
	mu     sync.Mutex
	items  []memKV // sorted by key
	closed bool
}

type memKV struct {
	key   string
	value []byte
}

// NewMemStorage returns a transient in-memory Storage, mostly useful for tests.
func NewMemStorage() Storage {
	return &memStorage{}
}

func (s *memStorage) Insert(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	data = slices.Clone(data)

	i, ok := s.find(key)
	if ok {
		s.items[i].value = data
		return nil
	}
	s.items = slices.Insert(s.items, i, memKV{key: key, value: data})
	return nil
}

func (s *memStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	i, ok := s.find(key)
	if !ok {
		return nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *memStorage) QueryAll() ([]RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	result := make([]RawRecord, len(s.items))
	for i, kv := range s.items {
		result[i] = RawRecord{Key: kv.key, Data: slices.Clone(kv.value)}
	}
	return result, nil
}

func (s *memStorage) QueryByKey(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	i, ok := s.find(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(s.items[i].value), true, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}

func (s *memStorage) find(key string) (idx int, ok bool) {
	items := s.items
	i := sort.Search(len(items), func(i int) bool {
		return strings.Compare(items[i].key, key) >= 0
	})
	if i < len(items) && items[i].key == key {
		return i, true
	}
	return i, false
}
