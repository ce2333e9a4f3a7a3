package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rushteam/txnprep/core"
)

// FileStore 是本地文件实现的 Store，key 即相对于 Root 的文件路径（Root 为空时直接使用 key）。
//
// 写入先落到同目录的临时文件，fsync 后再 rename 覆盖目标文件；
// BatchSet 先写完全部临时文件再逐个 rename，任何一个临时文件写失败都不会改动已有文件。
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore 创建文件存储
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (f *FileStore) Name() string { return "file" }

// Locate 返回 key 对应的文件路径
func (f *FileStore) Locate(key string) string {
	if f.root == "" || filepath.IsAbs(key) {
		return filepath.Clean(key)
	}
	return filepath.Join(f.root, key)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Locate(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(path, err)
	}
	if err != nil {
		return nil, ioError("store: read file failed", path, err)
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return f.BatchSet(ctx, map[string][]byte{key: value})
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	path := f.Locate(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError("store: remove file failed", path, err)
	}
	return nil
}

func (f *FileStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := f.Get(ctx, k)
		if core.IsStoreNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

type staged struct {
	tmp    string
	target string
}

func (f *FileStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(kvs))
	for k := range kvs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pending := make([]staged, 0, len(keys))
	cleanup := func() {
		for _, s := range pending {
			_ = os.Remove(s.tmp)
		}
	}

	for _, k := range keys {
		target := f.Locate(k)
		tmp, err := writeTemp(target, kvs[k])
		if err != nil {
			cleanup()
			return ioError("store: write file failed", target, err)
		}
		pending = append(pending, staged{tmp: tmp, target: target})
	}

	for i, s := range pending {
		if err := os.Rename(s.tmp, s.target); err != nil {
			pending = pending[i:]
			cleanup()
			return ioError("store: rename file failed", s.target, err)
		}
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

func writeTemp(target string, data []byte) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

var _ core.Store = (*FileStore)(nil)
