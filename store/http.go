package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rushteam/txnprep/core"
)

// HTTPStore 是只读的 Store，从制品服务按 BaseURL + "/" + key 拉取产物。
// 推理侧使用，写操作返回 ErrStoreNotSupported。
type HTTPStore struct {
	client  *http.Client
	baseURL string
}

// NewHTTPStore 创建 HTTP 只读存储
//
// 用法：
//
//	s := store.NewHTTPStore("http://artifacts.example.com/fraud/v3", 5*time.Second)
//	data, err := s.Get(ctx, "artifacts/schema.json")
func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return NewHTTPStoreWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewHTTPStoreWithClient 使用自定义 HTTP 客户端创建存储
func NewHTTPStoreWithClient(baseURL string, client *http.Client) *HTTPStore {
	return &HTTPStore{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *HTTPStore) Name() string { return "http" }

// Locate 返回 key 对应的 URL
func (h *HTTPStore) Locate(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return h.baseURL + "/" + strings.Join(parts, "/")
}

func (h *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	target := h.Locate(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, ioError("store: 创建 HTTP 请求失败", target, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ioError("store: HTTP 请求失败", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound(target, nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, ioError("store: HTTP 请求失败", target,
			fmt.Errorf("status=%d, body=%s", resp.StatusCode, string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ioError("store: 读取响应失败", target, err)
	}
	return data, nil
}

func (h *HTTPStore) Set(ctx context.Context, key string, value []byte) error {
	return core.ErrStoreNotSupported
}

func (h *HTTPStore) Delete(ctx context.Context, key string) error {
	return core.ErrStoreNotSupported
}

func (h *HTTPStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := h.Get(ctx, k)
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

func (h *HTTPStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	return core.ErrStoreNotSupported
}

func (h *HTTPStore) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

var _ core.Store = (*HTTPStore)(nil)
