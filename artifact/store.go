package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/feature"
)

// Store 通过 core.Store 读写四个产物。
//
// 用法：
//
//	as := artifact.NewStore(store.NewFileStore(""), artifact.DefaultPaths(), feature.DefaultContract())
//	locators, err := as.Persist(ctx, bundle)
//	bundle, err := as.Load(ctx)
type Store struct {
	backend  core.Store
	paths    Paths
	contract feature.Contract
}

// NewStore 创建产物存储
func NewStore(backend core.Store, paths Paths, contract feature.Contract) *Store {
	return &Store{backend: backend, paths: paths.WithDefaults(), contract: contract}
}

// Paths 返回生效的产物路径
func (s *Store) Paths() Paths { return s.paths }

// Locators 返回四个产物在后端中的位置
func (s *Store) Locators() Locators {
	return Locators{
		Preprocessor:   core.Locate(s.backend, s.paths.Preprocessor),
		Encoder:        core.Locate(s.backend, s.paths.Encoder),
		Schema:         core.Locate(s.backend, s.paths.Schema),
		FeatureColumns: core.Locate(s.backend, s.paths.FeatureColumns),
	}
}

// Persist 编码四个产物并通过一次 BatchSet 写入，覆盖已有产物
func (s *Store) Persist(ctx context.Context, b *Bundle) (Locators, error) {
	if err := s.paths.Validate(); err != nil {
		return Locators{}, err
	}
	if err := b.Validate(s.contract); err != nil {
		return Locators{}, err
	}

	kvs := make(map[string][]byte, 4)
	values := []struct {
		key string
		v   any
	}{
		{key: s.paths.Preprocessor, v: b.Numeric},
		{key: s.paths.Encoder, v: b.Encoder},
		{key: s.paths.Schema, v: b.Schema},
		{key: s.paths.FeatureColumns, v: b.FeatureColumns},
	}
	for _, kv := range values {
		data, err := encode(kv.v)
		if err != nil {
			return Locators{}, core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeInternalError,
				"encode artifact failed", kv.key, err)
		}
		kvs[kv.key] = data
	}

	if err := s.backend.BatchSet(ctx, kvs); err != nil {
		return Locators{}, core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeIO,
			"persist artifacts failed", s.paths.Dir, err)
	}
	return s.Locators(), nil
}

// Load 读取并校验四个产物。
//
// 任一产物不存在返回 NOT_FOUND；无法解析或与契约不兼容返回 INVALID_ARTIFACT；读取失败返回 IO_ERROR。
func (s *Store) Load(ctx context.Context) (*Bundle, error) {
	if err := s.paths.Validate(); err != nil {
		return nil, err
	}
	var b Bundle
	targets := []struct {
		key string
		v   any
	}{
		{key: s.paths.Schema, v: &b.Schema},
		{key: s.paths.FeatureColumns, v: &b.FeatureColumns},
		{key: s.paths.Preprocessor, v: &b.Numeric},
		{key: s.paths.Encoder, v: &b.Encoder},
	}
	for _, t := range targets {
		if err := s.read(ctx, t.key, t.v); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(s.contract); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) read(ctx context.Context, key string, v any) error {
	loc := core.Locate(s.backend, key)
	data, err := s.backend.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeNotFound, "artifact not found", loc, err)
	}
	if err != nil {
		return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeIO, "read artifact failed", loc, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeInvalidArtifact, "decode artifact failed", loc, err)
	}
	if dec.More() {
		return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeInvalidArtifact,
			"decode artifact failed", loc, fmt.Errorf("trailing data after JSON value"))
	}
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
