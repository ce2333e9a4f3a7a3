package artifact

import (
	"fmt"
	"slices"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/feature"
)

// Bundle 是一次拟合产出的四个产物
type Bundle struct {
	Numeric        feature.NumericState
	Encoder        feature.EncoderState
	Schema         feature.Schema
	FeatureColumns []string
}

// NewBundle 由已 fit 的估计器生成产物
func NewBundle(contract feature.Contract, im *feature.Imputer, sc *feature.Scaler, enc *feature.OneHotEncoder) (*Bundle, error) {
	numeric, err := feature.NewNumericState(im, sc)
	if err != nil {
		return nil, err
	}
	encoder, err := enc.State()
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Numeric:        numeric,
		Encoder:        encoder,
		Schema:         contract.Schema(),
		FeatureColumns: feature.OutputColumns(contract.Numerical, enc),
	}, nil
}

// Validate 检查产物彼此一致且与契约兼容
func (b *Bundle) Validate(contract feature.Contract) error {
	if err := b.Schema.CompatibleWith(contract); err != nil {
		return err
	}
	if names := b.Numeric.Names(); !slices.Equal(names, contract.Numerical) {
		return invalidArtifact(fmt.Sprintf("preprocessor columns %v do not match numerical columns %v", names, contract.Numerical))
	}
	if names := b.Encoder.Names(); !slices.Equal(names, contract.Categorical) {
		return invalidArtifact(fmt.Sprintf("encoder columns %v do not match categorical columns %v", names, contract.Categorical))
	}
	enc, err := b.Encoder.Restore()
	if err != nil {
		return invalidArtifact(err.Error())
	}
	want := feature.OutputColumns(contract.Numerical, enc)
	if len(b.FeatureColumns) != len(want) {
		return invalidArtifact(fmt.Sprintf("feature_columns has %d names, numeric+encoder width is %d", len(b.FeatureColumns), len(want)))
	}
	if !slices.Equal(b.FeatureColumns, want) {
		return invalidArtifact("feature_columns do not match numeric columns and encoder categories")
	}
	return nil
}

// Restore 恢复出已 fit 的估计器
func (b *Bundle) Restore() (*feature.Imputer, *feature.Scaler, *feature.OneHotEncoder, error) {
	im, sc, err := b.Numeric.Restore()
	if err != nil {
		return nil, nil, nil, err
	}
	enc, err := b.Encoder.Restore()
	if err != nil {
		return nil, nil, nil, err
	}
	return im, sc, enc, nil
}

// Contract 返回产物记录的列契约（标签列不在产物中，由调用方给出）
func (b *Bundle) Contract(label string) feature.Contract {
	return feature.Contract{
		Numerical:   append([]string(nil), b.Schema.NumCols...),
		Categorical: append([]string(nil), b.Schema.AllCols[min(len(b.Schema.NumCols), len(b.Schema.AllCols)):]...),
		Label:       label,
	}
}

func invalidArtifact(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidArtifact, msg)
}
