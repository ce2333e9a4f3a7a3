package core

import "context"

// Store 是产物存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：artifact 包只依赖此接口
//   - key 即产物定位符（文件后端为文件路径，Redis 后端为带前缀的 key）
//
// 实现：
//   - store.FileStore：本地文件，临时文件 + rename 写入
//   - store.MemoryStore：测试/开发
//   - store.RedisStore：多个服务进程共享同一组产物
//   - store.HTTPStore：只读，推理侧从制品服务拉取
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，覆盖已有值
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取，不存在的 key 不出现在结果中
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入；实现应尽量保证要么全部可见，要么都不可见
	BatchSet(ctx context.Context, kvs map[string][]byte) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持（例如只读后端的写操作）
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsStoreNotSupported 检查错误是否为操作不支持
func IsStoreNotSupported(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// Locator 由能给出 key 实际位置的存储实现（文件路径、URL、带前缀的 Redis key）
type Locator interface {
	Locate(key string) string
}

// Locate 返回 key 在 s 中的位置；s 未实现 Locator 时原样返回 key
func Locate(s Store, key string) string {
	if l, ok := s.(Locator); ok {
		return l.Locate(key)
	}
	return key
}
