package artifact

import (
	"fmt"
	"path"

	"github.com/rushteam/txnprep/core"
)

// DefaultDir 默认产物目录
const DefaultDir = "artifacts"

// 产物文件名
const (
	PreprocessorFile   = "preprocessor.json"
	EncoderFile        = "encoder.json"
	SchemaFile         = "schema.json"
	FeatureColumnsFile = "feature_columns.json"
)

// Paths 是四个产物在存储后端中的 key。
// 每次运行显式传入；并发运行应使用不同的 Paths。
type Paths struct {
	Dir            string `yaml:"dir" json:"dir" mapstructure:"dir"`
	Preprocessor   string `yaml:"preprocessor" json:"preprocessor" mapstructure:"preprocessor"`
	Encoder        string `yaml:"encoder" json:"encoder" mapstructure:"encoder"`
	Schema         string `yaml:"schema" json:"schema" mapstructure:"schema"`
	FeatureColumns string `yaml:"feature_columns" json:"feature_columns" mapstructure:"feature_columns"`
}

// DefaultPaths 返回 artifacts/ 下的默认路径
func DefaultPaths() Paths { return NewPaths(DefaultDir) }

// NewPaths 返回 dir 下使用默认文件名的路径
func NewPaths(dir string) Paths {
	return Paths{
		Dir:            dir,
		Preprocessor:   path.Join(dir, PreprocessorFile),
		Encoder:        path.Join(dir, EncoderFile),
		Schema:         path.Join(dir, SchemaFile),
		FeatureColumns: path.Join(dir, FeatureColumnsFile),
	}
}

// WithDefaults 只配置了 Dir 的字段补全为 Dir 下的默认文件名
func (p Paths) WithDefaults() Paths {
	dir := p.Dir
	if dir == "" {
		dir = DefaultDir
	}
	d := NewPaths(dir)
	if p.Preprocessor == "" {
		p.Preprocessor = d.Preprocessor
	}
	if p.Encoder == "" {
		p.Encoder = d.Encoder
	}
	if p.Schema == "" {
		p.Schema = d.Schema
	}
	if p.FeatureColumns == "" {
		p.FeatureColumns = d.FeatureColumns
	}
	p.Dir = dir
	return p
}

// Validate 检查四个 key 非空且互不相同
func (p Paths) Validate() error {
	keys := p.keys()
	seen := make(map[string]string, len(keys))
	for _, k := range keys {
		if k.key == "" {
			return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput,
				fmt.Sprintf("artifact path %s is empty", k.name))
		}
		if other, dup := seen[k.key]; dup {
			return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput,
				fmt.Sprintf("artifact paths %s and %s are both %q", other, k.name, k.key))
		}
		seen[k.key] = k.name
	}
	return nil
}

type namedKey struct {
	name string
	key  string
}

func (p Paths) keys() []namedKey {
	return []namedKey{
		{name: "preprocessor", key: p.Preprocessor},
		{name: "encoder", key: p.Encoder},
		{name: "schema", key: p.Schema},
		{name: "feature_columns", key: p.FeatureColumns},
	}
}

// Locators 是产物写入后的实际位置（文件路径、URL 或 Redis key）
type Locators struct {
	Preprocessor   string `json:"preprocessor"`
	Encoder        string `json:"encoder"`
	Schema         string `json:"schema"`
	FeatureColumns string `json:"feature_columns"`
}
