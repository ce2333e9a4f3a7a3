package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
)

func TestFileStore_SetGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)

	require.NoError(t, s.Set(ctx, "artifacts/schema.json", []byte(`{"a":1}`)))
	got, err := s.Get(ctx, "artifacts/schema.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.Equal(t, filepath.Join(root, "artifacts", "schema.json"), s.Locate("artifacts/schema.json"))

	require.NoError(t, s.Set(ctx, "artifacts/schema.json", []byte(`{"a":2}`)))
	got, err = s.Get(ctx, "artifacts/schema.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))
}

func TestFileStore_NotFound(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, err := s.Get(context.Background(), "missing.json")
	require.Error(t, err)
	assert.True(t, core.IsStoreNotFound(err))
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestFileStore_BatchSetLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)

	require.NoError(t, s.BatchSet(ctx, map[string][]byte{
		"a.json":     []byte("1"),
		"sub/b.json": []byte("2"),
	}))

	got, err := s.BatchGet(ctx, []string{"a.json", "sub/b.json", "c.json"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a.json": []byte("1"), "sub/b.json": []byte("2")}, got)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.json", "sub"}, names)
}

func TestFileStore_BatchSetFailureKeepsExistingFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)
	require.NoError(t, s.Set(ctx, "a.json", []byte("old")))

	// blocker 是普通文件，无法在其下创建目录
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocker"), nil, 0o644))

	err := s.BatchSet(ctx, map[string][]byte{
		"a.json":         []byte("new"),
		"blocker/b.json": []byte("x"),
	})
	require.Error(t, err)
	assert.True(t, core.IsIOError(err))

	got, err := s.Get(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	matches, err := filepath.Glob(filepath.Join(root, ".a.json.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))

	_, err := s.Get(ctx, "a")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestFileStore_EmptyRootUsesKeyAsPath(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "x.json")
	s := NewFileStore("")
	require.NoError(t, s.Set(context.Background(), key, []byte("v")))
	assert.Equal(t, key, s.Locate(key))

	data, err := os.ReadFile(key)
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}
