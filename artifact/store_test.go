package artifact

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/store"
)

func fittedBundle(t *testing.T) *Bundle {
	t.Helper()
	contract := feature.DefaultContract()

	num, err := feature.NewMatrixFromRows([][]float64{
		{10, 30, 100, 1, 0},
		{20, math.NaN(), 200, 2, 60},
		{math.NaN(), 50, 300, 3, 120},
	})
	require.NoError(t, err)
	im := feature.NewImputer(contract.Numerical)
	imputed, err := im.FitTransform(num)
	require.NoError(t, err)
	sc := feature.NewScaler(contract.Numerical)
	require.NoError(t, sc.Fit(imputed))

	cat := dataset.NewTable(3)
	require.NoError(t, cat.PutInts(feature.ColumnHourOfDay, []int{13, 2, 13}))
	require.NoError(t, cat.PutInts(feature.ColumnDayOfWeek, []int{0, 6, 4}))
	enc := feature.NewOneHotEncoder(contract.Categorical)
	require.NoError(t, enc.Fit(cat))

	b, err := NewBundle(contract, im, sc, enc)
	require.NoError(t, err)
	return b
}

func TestPaths(t *testing.T) {
	p := DefaultPaths()
	assert.Equal(t, "artifacts/preprocessor.json", p.Preprocessor)
	assert.Equal(t, "artifacts/encoder.json", p.Encoder)
	assert.Equal(t, "artifacts/schema.json", p.Schema)
	assert.Equal(t, "artifacts/feature_columns.json", p.FeatureColumns)
	require.NoError(t, p.Validate())

	custom := Paths{Dir: "run-7", Schema: "shared/schema.json"}.WithDefaults()
	assert.Equal(t, "run-7/preprocessor.json", custom.Preprocessor)
	assert.Equal(t, "shared/schema.json", custom.Schema)

	dup := DefaultPaths()
	dup.Encoder = dup.Schema
	assert.True(t, core.IsInvalidInput(dup.Validate()))
}

func TestStore_PersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	backend := store.NewFileStore(root)
	as := NewStore(backend, DefaultPaths(), feature.DefaultContract())

	want := fittedBundle(t)
	locators, err := as.Persist(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "artifacts", "preprocessor.json"), locators.Preprocessor)

	got, err := as.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got.FeatureColumns, 5+2+3)

	// schema 清单读回后逐字节一致
	raw, err := os.ReadFile(locators.Schema)
	require.NoError(t, err)
	var schema map[string][]string
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, feature.DefaultContract().Numerical, schema["num_cols"])
	assert.Equal(t, feature.DefaultContract().FeatureColumns(), schema["all_cols"])
	again, err := encode(got.Schema)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestStore_LoadMissingArtifact(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	as := NewStore(backend, DefaultPaths(), feature.DefaultContract())
	_, err := as.Persist(ctx, fittedBundle(t))
	require.NoError(t, err)

	require.NoError(t, backend.Delete(ctx, "artifacts/encoder.json"))
	_, err = as.Load(ctx)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Contains(t, err.Error(), "artifacts/encoder.json")
}

func TestStore_LoadInvalidArtifact(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "not json", key: "artifacts/schema.json", value: "{"},
		{name: "unknown field", key: "artifacts/schema.json", value: `{"num_cols":[],"all_cols":[],"extra":1}`},
		{name: "schema mismatch", key: "artifacts/schema.json", value: `{"num_cols":["amount"],"all_cols":["amount"]}`},
		{name: "feature count", key: "artifacts/feature_columns.json", value: `["amount"]`},
		{name: "encoder columns", key: "artifacts/encoder.json", value: `{"columns":[{"name":"hour_of_day","categories":["1"]}],"handle_unknown":"ignore"}`},
		{name: "preprocessor columns", key: "artifacts/preprocessor.json", value: `{"columns":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := store.NewMemoryStore()
			as := NewStore(backend, DefaultPaths(), feature.DefaultContract())
			_, err := as.Persist(ctx, fittedBundle(t))
			require.NoError(t, err)

			require.NoError(t, backend.Set(ctx, tt.key, []byte(tt.value)))
			_, err = as.Load(ctx)
			require.Error(t, err)
			assert.True(t, core.IsInvalidArtifact(err), err.Error())
		})
	}
}

func TestStore_PersistIOError(t *testing.T) {
	as := NewStore(store.NewHTTPStore("http://127.0.0.1:1", 0), DefaultPaths(), feature.DefaultContract())
	_, err := as.Persist(context.Background(), fittedBundle(t))
	require.Error(t, err)
	assert.True(t, core.IsIOError(err))
	assert.ErrorIs(t, err, core.ErrStoreNotSupported)
}

func TestStore_PersistOverwrites(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	as := NewStore(backend, DefaultPaths(), feature.DefaultContract())

	_, err := as.Persist(ctx, fittedBundle(t))
	require.NoError(t, err)
	_, err = as.Persist(ctx, fittedBundle(t))
	require.NoError(t, err)
	assert.Equal(t, 4, backend.Len())
}

func TestBundle_Contract(t *testing.T) {
	b := fittedBundle(t)
	assert.Equal(t, feature.DefaultContract(), b.Contract(feature.DefaultLabelColumn))
}
