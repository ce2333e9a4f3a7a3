package core

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、消息（Message）以及出错的路径（Path）
//   - 支持 errors.Is / errors.As，检查函数可以穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Artifact 错误：NOT_FOUND, INVALID_ARTIFACT, IO_ERROR
//   - Feature 错误：INVALID_INPUT, NOT_FITTED
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "IO_ERROR"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "artifact"）
	Path    string // 相关的文件路径或存储 key，可为空
	Err     error  // 原始错误，可为空
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(" (path=")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module+Code 比较，允许 errors.Is(err, ErrStoreNotFound) 这种哨兵用法。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带路径和原始错误的领域错误
func WrapDomainError(module, code, message, path string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Path:    path,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound        = "NOT_FOUND"        // 资源不存在
	ErrorCodeNotSupported    = "NOT_SUPPORTED"    // 操作不支持
	ErrorCodeInvalidInput    = "INVALID_INPUT"    // 输入无效
	ErrorCodeInvalidArtifact = "INVALID_ARTIFACT" // 产物结构不兼容
	ErrorCodeIO              = "IO_ERROR"         // 读写失败
	ErrorCodeNotFitted       = "NOT_FITTED"       // 估计器未 fit
	ErrorCodeAlreadyFitted   = "ALREADY_FITTED"   // 估计器重复 fit
	ErrorCodeInternalError   = "INTERNAL_ERROR"   // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleFeature  = "feature"  // 特征模块
	ModuleArtifact = "artifact" // 产物模块
	ModuleDataset  = "dataset"  // 数据表模块
	ModulePipeline = "pipeline" // 流水线模块
)

func hasCode(err error, code string) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == code
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsInvalidArtifact 检查错误是否为 INVALID_ARTIFACT
func IsInvalidArtifact(err error) bool { return hasCode(err, ErrorCodeInvalidArtifact) }

// IsIOError 检查错误是否为 IO_ERROR
func IsIOError(err error) bool { return hasCode(err, ErrorCodeIO) }

// IsNotFitted 检查错误是否为 NOT_FITTED
func IsNotFitted(err error) bool { return hasCode(err, ErrorCodeNotFitted) }

// MissingColumnsError 表示特征工程之后缺少必需列。
// Columns 按列契约的顺序列出全部缺失列，而不只是第一个。
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns for transformation: [%s]", strings.Join(e.Columns, ", "))
}

// GetMissingColumns 返回错误链中的缺失列列表；不是 MissingColumnsError 时返回 nil
func GetMissingColumns(err error) []string {
	var missing *MissingColumnsError
	if errors.As(err, &missing) {
		return missing.Columns
	}
	return nil
}

// StageError 为流水线中任一阶段的失败附加阶段名，保留原始错误。
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage 返回错误链中最外层 StageError 的阶段名
func FailedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
