package inference

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/pipeline"
	"github.com/rushteam/txnprep/store"
)

const trainCSV = `txn_timestamp,loginTime,amount,customer_age,minute_of_day,to_acc_volume,fraud
2024-01-01 10:00:00,2024-01-01 09:59:00,100,30,600,5,0
2024-01-02 11:00:00,2024-01-02 10:58:00,200,,660,3,1
2024-01-03 10:30:00,,NA,40,630,1,0
2024-01-01 23:00:00,2024-01-01 22:00:00,300,50,1380,7,1
`

var testRecords = []map[string]string{
	{"txn_timestamp": "2024-01-06 05:00:00", "loginTime": "2024-01-06 04:00:00", "amount": "150", "customer_age": "35", "minute_of_day": "300", "to_acc_volume": "2", "fraud": "0"},
	{"txn_timestamp": "2024-01-02 11:00:00", "loginTime": "", "amount": "abc", "customer_age": "45", "minute_of_day": "660", "to_acc_volume": "4", "fraud": "1"},
}

func trainAndLoad(t *testing.T) (*pipeline.Result, *artifact.Bundle) {
	t.Helper()
	ctx := context.Background()
	train, err := dataset.ReadCSV(strings.NewReader(trainCSV))
	require.NoError(t, err)
	test, err := dataset.FromRecords(train.Names(), testRecords)
	require.NoError(t, err)

	backend := store.NewMemoryStore()
	tr, err := pipeline.New(pipeline.DefaultConfig(), pipeline.WithStore(backend))
	require.NoError(t, err)
	res, err := tr.RunTables(ctx, train, test)
	require.NoError(t, err)

	bundle, err := artifact.NewStore(backend, artifact.DefaultPaths(), feature.DefaultContract()).Load(ctx)
	require.NoError(t, err)
	return res, bundle
}

func TestVectorizer_MatchesTrainingTransform(t *testing.T) {
	res, bundle := trainAndLoad(t)
	v, err := NewVectorizer(bundle)
	require.NoError(t, err)
	assert.Equal(t, res.FeatureColumns, v.FeatureColumns())

	_, cols := res.Test.Dims()
	for i, rec := range testRecords {
		got, err := v.VectorFromRaw(rec)
		require.NoError(t, err)
		assert.InDeltaSlice(t, res.Test.Row(i)[:cols-1], got, 1e-12, "record %d", i)
	}
}

func TestVectorizer_Vector(t *testing.T) {
	res, bundle := trainAndLoad(t)
	v, err := NewVectorizer(bundle)
	require.NoError(t, err)

	values := map[string]string{
		"amount":           "abc",
		"customer_age":     "45",
		"minute_of_day":    "660",
		"to_acc_volume":    "4",
		"session_duration": "0",
		"hour_of_day":      "11.0",
		"day_of_week":      " 1",
	}
	got, err := v.Vector(values)
	require.NoError(t, err)
	assert.InDeltaSlice(t, res.Test.Row(1)[:len(got)], got, 1e-12)

	values["hour_of_day"] = "4"
	got, err = v.Vector(values)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, got[5:8])
}

func TestVectorizer_MissingColumns(t *testing.T) {
	_, bundle := trainAndLoad(t)
	v, err := NewVectorizer(bundle)
	require.NoError(t, err)

	_, err = v.Vector(map[string]string{"amount": "1"})
	assert.Equal(t, []string{"customer_age", "minute_of_day", "to_acc_volume", "session_duration", "hour_of_day", "day_of_week"},
		core.GetMissingColumns(err))

	raw := map[string]string{}
	for k, val := range testRecords[0] {
		raw[k] = val
	}
	delete(raw, "amount")
	_, err = v.VectorFromRaw(raw)
	assert.Equal(t, []string{"amount"}, core.GetMissingColumns(err))
}

func TestNewVectorizer_InvalidBundle(t *testing.T) {
	_, bundle := trainAndLoad(t)
	bundle.FeatureColumns = bundle.FeatureColumns[:3]
	_, err := NewVectorizer(bundle)
	assert.True(t, core.IsInvalidArtifact(err))
}
