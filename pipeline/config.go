package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/config"
	"github.com/rushteam/txnprep/feature"
)

// Config 是预处理流水线的配置结构（支持 YAML/JSON）。
//
// YAML 示例：
//
//	name: fraud-v3
//	contract:
//	  numerical: [amount, customer_age, minute_of_day, to_acc_volume, session_duration]
//	  categorical: [hour_of_day, day_of_week]
//	  label: fraud
//	artifacts:
//	  dir: artifacts
//	store:
//	  backend: file
//	label_rule: "label > 0.5"
type Config struct {
	Name      string             `yaml:"name" json:"name" mapstructure:"name"`
	Contract  feature.Contract   `yaml:"contract" json:"contract" mapstructure:"contract"`
	Artifacts artifact.Paths     `yaml:"artifacts" json:"artifacts" mapstructure:"artifacts"`
	Store     config.StoreConfig `yaml:"store" json:"store" mapstructure:"store"`
	// LabelRule 可选的 CEL 表达式，为空时标签向零截断
	LabelRule string `yaml:"label_rule" json:"label_rule" mapstructure:"label_rule"`
}

// DefaultConfig 返回默认列契约、artifacts/ 目录与本地文件后端的配置
func DefaultConfig() Config {
	return Config{
		Name:      "txnprep",
		Contract:  feature.DefaultContract(),
		Artifacts: artifact.DefaultPaths(),
		Store:     config.StoreConfig{Backend: config.DefaultBackend},
	}
}

// WithDefaults 未配置的字段使用默认值
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if len(c.Contract.Numerical) == 0 && len(c.Contract.Categorical) == 0 {
		label := c.Contract.Label
		c.Contract = d.Contract
		if label != "" {
			c.Contract.Label = label
		}
	}
	if c.Contract.Label == "" {
		c.Contract.Label = feature.DefaultLabelColumn
	}
	c.Artifacts = c.Artifacts.WithDefaults()
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	return c
}

// Validate 校验列契约、产物路径与存储后端
func (c Config) Validate() error {
	if err := c.Contract.Validate(); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	if err := c.Artifacts.Validate(); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// LoadFromYAML 从 YAML 文件加载流水线配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg = cfg.WithDefaults()
	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载流水线配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	cfg = cfg.WithDefaults()
	return &cfg, nil
}
