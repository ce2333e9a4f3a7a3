package store

import (
	"context"
	"sync"

	"github.com/rushteam/txnprep/core"
)

// MemoryStore 是内存实现的 Store，用于测试/开发。
// 读写都会拷贝 value，进程重启后数据丢失。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, notFound(key, nil)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			result[k] = append([]byte(nil), v...)
		}
	}
	return result, nil
}

// BatchSet 在一次加锁内写入全部 key，读者要么看到全部新值，要么全部旧值
func (m *MemoryStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range kvs {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Len 返回当前存储的 key 数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error { return nil }

var _ core.Store = (*MemoryStore)(nil)
