package builders

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/txnprep/config"
	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/pkg/conv"
	"github.com/rushteam/txnprep/store"
)

func init() {
	config.Register("file", BuildFileStore)
	config.Register("memory", BuildMemoryStore)
	config.Register("redis", BuildRedisStore)
	config.Register("http", BuildHTTPStore)
}

// BuildFileStore options: root（可选，key 相对的根目录）
func BuildFileStore(_ context.Context, cfg map[string]any) (core.Store, error) {
	return store.NewFileStore(conv.ConfigGet(cfg, "root", "")), nil
}

func BuildMemoryStore(_ context.Context, _ map[string]any) (core.Store, error) {
	return store.NewMemoryStore(), nil
}

// BuildRedisStore options: addr（必填）、db、prefix
func BuildRedisStore(ctx context.Context, cfg map[string]any) (core.Store, error) {
	addr := conv.ConfigGet(cfg, "addr", "")
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	return store.NewRedisStore(ctx, addr,
		int(conv.ConfigGetInt64(cfg, "db", 0)),
		store.WithKeyPrefix(conv.ConfigGet(cfg, "prefix", "")),
	)
}

// BuildHTTPStore options: base_url（必填）、timeout（秒）
func BuildHTTPStore(_ context.Context, cfg map[string]any) (core.Store, error) {
	baseURL := conv.ConfigGet(cfg, "base_url", "")
	if baseURL == "" {
		return nil, fmt.Errorf("http base_url is required")
	}
	timeout := time.Duration(conv.ConfigGetInt64(cfg, "timeout", 0)) * time.Second
	return store.NewHTTPStore(baseURL, timeout), nil
}
