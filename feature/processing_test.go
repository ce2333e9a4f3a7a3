package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
)

func matrixOf(t *testing.T, rows ...[]float64) *Matrix {
	t.Helper()
	m, err := NewMatrixFromRows(rows)
	require.NoError(t, err)
	return m
}

func TestImputer_MedianExample(t *testing.T) {
	im := NewImputer([]string{"amount"})
	train := matrixOf(t, []float64{10}, []float64{20}, []float64{math.NaN()})

	out, err := im.FitTransform(train)
	require.NoError(t, err)
	assert.Equal(t, []float64{15}, im.Medians())
	assert.Equal(t, []float64{10, 20, 15}, out.Col(0))

	test, err := im.Transform(matrixOf(t, []float64{math.NaN()}))
	require.NoError(t, err)
	assert.Equal(t, 15.0, test.At(0, 0))
}

func TestImputer_Median(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "odd", values: []float64{3, 1, 2}, want: 2},
		{name: "even", values: []float64{4, 1, 3, 2}, want: 2.5},
		{name: "ignores nan", values: []float64{math.NaN(), 7, math.NaN()}, want: 7},
		{name: "all missing", values: []float64{math.NaN(), math.NaN()}, want: 0},
		{name: "opposite signs at limit", values: []float64{-math.MaxFloat64, math.MaxFloat64}, want: 0},
		{name: "both at limit", values: []float64{math.MaxFloat64, math.MaxFloat64}, want: math.MaxFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.values))
		})
	}
}

func TestImputer_MedianOfLargeValuesStaysFinite(t *testing.T) {
	got := median([]float64{1.7e308, 1.5e308})
	assert.False(t, math.IsInf(got, 0))
	assert.InEpsilon(t, 1.6e308, got, 1e-12)
}

func TestImputer_FitOnceAndOrder(t *testing.T) {
	im := NewImputer([]string{"a"})
	_, err := im.Transform(matrixOf(t, []float64{1}))
	assert.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, im.Fit(matrixOf(t, []float64{1})))
	err = im.Fit(matrixOf(t, []float64{2}))
	assert.ErrorIs(t, err, ErrAlreadyFitted)
	assert.Equal(t, []float64{1}, im.Medians())
}

func TestImputer_Errors(t *testing.T) {
	err := NewImputer([]string{"a"}).Fit(NewMatrix(0, 1))
	assert.True(t, core.IsInvalidInput(err))

	err = NewImputer([]string{"a", "b"}).Fit(matrixOf(t, []float64{1}))
	assert.True(t, core.IsInvalidInput(err))

	_, err = NewFittedImputer([]string{"a"}, nil)
	assert.True(t, core.IsInvalidInput(err))
}

func TestScaler_FitTransform(t *testing.T) {
	sc := NewScaler([]string{"a", "b"})
	train := matrixOf(t,
		[]float64{1, 5},
		[]float64{2, 5},
		[]float64{3, 5},
	)

	out, err := sc.FitTransform(train)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, sc.Means())
	stds := sc.Stds()
	assert.InDelta(t, math.Sqrt(2.0/3.0), stds[0], 1e-12)
	assert.Equal(t, 0.0, stds[1])

	a := out.Col(0)
	assert.InDelta(t, -1.224744871391589, a[0], 1e-12)
	assert.InDelta(t, 0, a[1], 1e-12)
	assert.InDelta(t, 1.224744871391589, a[2], 1e-12)
	// 标准差为 0 的列只减均值
	assert.Equal(t, []float64{0, 0, 0}, out.Col(1))
}

func TestScaler_TransformIsIdempotentGivenFittedState(t *testing.T) {
	sc := NewScaler([]string{"a"})
	train := matrixOf(t, []float64{1}, []float64{4}, []float64{10})
	first, err := sc.FitTransform(train)
	require.NoError(t, err)

	means, stds := sc.Means(), sc.Stds()
	second, err := sc.Transform(train)
	require.NoError(t, err)

	assert.Equal(t, first.Rows(), second.Rows())
	assert.Equal(t, means, sc.Means())
	assert.Equal(t, stds, sc.Stds())
}

func TestScaler_ParametersIgnoreTestPartition(t *testing.T) {
	train := matrixOf(t, []float64{1}, []float64{2}, []float64{3})

	a := NewScaler([]string{"a"})
	require.NoError(t, a.Fit(train))
	_, err := a.Transform(matrixOf(t, []float64{100}, []float64{-50}))
	require.NoError(t, err)

	b := NewScaler([]string{"a"})
	require.NoError(t, b.Fit(train))
	_, err = b.Transform(matrixOf(t, []float64{1e9}))
	require.NoError(t, err)

	assert.Equal(t, a.Means(), b.Means())
	assert.Equal(t, a.Stds(), b.Stds())
}

func TestScaler_NotFitted(t *testing.T) {
	_, err := NewScaler([]string{"a"}).Transform(matrixOf(t, []float64{1}))
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.True(t, core.IsNotFitted(err))
}

func TestNumericMatrix(t *testing.T) {
	tbl := dataset.NewTable(2)
	require.NoError(t, tbl.PutFloats("a", []float64{1, 2}))
	require.NoError(t, tbl.PutStrings("s", []string{"x", "y"}))

	m, err := NumericMatrix(tbl, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, m.Col(0))

	_, err = NumericMatrix(tbl, []string{"a", "b", "c"})
	assert.Equal(t, []string{"b", "c"}, core.GetMissingColumns(err))

	_, err = NumericMatrix(tbl, []string{"s"})
	assert.True(t, core.IsInvalidInput(err))
}
