package store

import (
	"context"
	"sync"
)

// MemoryStore 进程内实现，用于测试与本地开发，重启后数据丢失
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]string
	hashes map[string]map[string]string
	lists  map[string][]string // 下标 0 为表头
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string]string),
		hashes: make(map[string]map[string]string),
		lists:  make(map[string][]string),
	}
}

func (s *MemoryStore) DocumentGet(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.docs[key]
	return v, ok, nil
}

func (s *MemoryStore) DocumentSet(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = value
	return nil
}

func (s *MemoryStore) HashGet(_ context.Context, name, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.hashes[name][field]
	return v, ok, nil
}

func (s *MemoryStore) HashSet(_ context.Context, name, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[name]
	if !ok {
		h = make(map[string]string)
		s.hashes[name] = h
	}
	h[field] = value
	return nil
}

func (s *MemoryStore) HashDelete(_ context.Context, name, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes[name], field)
	return nil
}

func (s *MemoryStore) HashGetAll(_ context.Context, name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.hashes[name]))
	for k, v := range s.hashes[name] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) ListPushHead(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[name] = append([]string{value}, s.lists[name]...)
	return nil
}

func (s *MemoryStore) ListRange(_ context.Context, name string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.lists[name]
	lo, hi, ok := NormalizeRange(len(l), start, stop)
	if !ok {
		return []string{}, nil
	}
	out := make([]string, hi-lo)
	copy(out, l[lo:hi])
	return out, nil
}

func (s *MemoryStore) ListTrim(_ context.Context, name string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[name]
	lo, hi, ok := NormalizeRange(len(l), start, stop)
	if !ok {
		delete(s.lists, name)
		return nil
	}
	kept := make([]string, hi-lo)
	copy(kept, l[lo:hi])
	s.lists[name] = kept
	return nil
}

func (s *MemoryStore) ListClear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
