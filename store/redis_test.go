package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
)

// 需要真实 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./store/...
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	prefix := "txnprep-test:" + uuid.NewString() + ":"

	s, err := NewRedisStore(ctx, addr, 0, WithKeyPrefix(prefix))
	require.NoError(t, err)
	defer s.Close()

	keys := []string{"artifacts/schema.json", "artifacts/encoder.json"}
	defer func() {
		for _, k := range keys {
			_ = s.Delete(ctx, k)
		}
	}()

	require.NoError(t, s.BatchSet(ctx, map[string][]byte{
		keys[0]: []byte("schema"),
		keys[1]: []byte("encoder"),
	}))

	got, err := s.Get(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, "schema", string(got))
	assert.Equal(t, prefix+keys[0], s.Locate(keys[0]))

	batch, err := s.BatchGet(ctx, append(keys, "artifacts/none.json"))
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	_, err = s.Get(ctx, "artifacts/none.json")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "127.0.0.1:1", 0)
	require.Error(t, err)
	assert.True(t, core.IsIOError(err))
}
