package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/txnprep/core"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/txnprep/config/builders"
// 以触发内置存储后端（file、memory、redis、http）的 init 注册。

// StoreBuilder 根据 options 构建一个产物存储后端
type StoreBuilder func(ctx context.Context, options map[string]any) (core.Store, error)

var (
	defaultBuilders   = make(map[string]StoreBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种存储后端的构建逻辑。
// 建议在各后端的 init 中调用，例如：func init() { config.Register("redis", BuildRedisStore) }
func Register(backend string, builder StoreBuilder) {
	if backend == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[backend] = builder
}

// SupportedBackends 返回当前已注册的后端列表（排序），用于错误提示与校验。
func SupportedBackends() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	backends := make([]string, 0, len(defaultBuilders))
	for b := range defaultBuilders {
		backends = append(backends, b)
	}
	sort.Strings(backends)
	return backends
}

func lookup(backend string) (StoreBuilder, bool) {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	b, ok := defaultBuilders[backend]
	return b, ok
}

// StoreConfig 描述产物存储后端
//
// YAML 示例：
//
//	store:
//	  backend: redis
//	  options:
//	    addr: 127.0.0.1:6379
//	    db: 0
//	    prefix: "fraud:v3:"
type StoreConfig struct {
	Backend string         `yaml:"backend" json:"backend" mapstructure:"backend"`
	Options map[string]any `yaml:"options" json:"options" mapstructure:"options"`
}

// DefaultBackend 未配置后端时使用本地文件
const DefaultBackend = "file"

// BackendName 返回生效的后端名称
func (c StoreConfig) BackendName() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// Validate 校验后端已注册；若未支持则返回包含已支持列表的错误。
func (c StoreConfig) Validate() error {
	if _, ok := lookup(c.BackendName()); !ok {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported store backend %q (supported: %v)", c.BackendName(), SupportedBackends()))
	}
	return nil
}

// BuildStore 按配置构建存储后端
func BuildStore(ctx context.Context, c StoreConfig) (core.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	builder, _ := lookup(c.BackendName())
	s, err := builder(ctx, c.Options)
	if err != nil {
		return nil, fmt.Errorf("build store %s: %w", c.BackendName(), err)
	}
	return s, nil
}
