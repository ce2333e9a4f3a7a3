package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
)

func engineeredTable(t *testing.T, contract Contract, rows int, drop ...string) *dataset.Table {
	t.Helper()
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	tbl := dataset.NewTable(rows)
	for _, name := range contract.Numerical {
		if !skip[name] {
			require.NoError(t, tbl.PutFloats(name, make([]float64, rows)))
		}
	}
	for _, name := range contract.Categorical {
		if !skip[name] {
			require.NoError(t, tbl.PutInts(name, make([]int, rows)))
		}
	}
	if !skip[contract.Label] {
		require.NoError(t, tbl.PutInts(contract.Label, make([]int, rows)))
	}
	return tbl
}

func TestContract_FeatureColumns(t *testing.T) {
	c := DefaultContract()
	assert.Equal(t, []string{
		"amount", "customer_age", "minute_of_day", "to_acc_volume", "session_duration",
		"hour_of_day", "day_of_week",
	}, c.FeatureColumns())

	s := c.Schema()
	assert.Equal(t, c.Numerical, s.NumCols)
	assert.Equal(t, c.FeatureColumns(), s.AllCols)
}

func TestContract_ValidateTable(t *testing.T) {
	c := DefaultContract()

	tests := []struct {
		name    string
		drop    []string
		labeled bool
		missing []string
	}{
		{name: "complete", labeled: true},
		{name: "missing amount", drop: []string{"amount"}, missing: []string{"amount"}},
		{
			name:    "missing several in contract order",
			drop:    []string{"day_of_week", "amount", "to_acc_volume"},
			missing: []string{"amount", "to_acc_volume", "day_of_week"},
		},
		{name: "label not needed for inference", drop: []string{"fraud"}},
		{name: "label needed for training", drop: []string{"fraud"}, labeled: true, missing: []string{"fraud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := engineeredTable(t, c, 2, tt.drop...)
			var err error
			if tt.labeled {
				err = c.ValidateLabeledTable(tbl)
			} else {
				err = c.ValidateTable(tbl)
			}
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.missing, core.GetMissingColumns(err))
		})
	}
}

func TestContract_ValidateTableMessage(t *testing.T) {
	tbl := engineeredTable(t, DefaultContract(), 1, "amount")
	err := DefaultContract().ValidateTable(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestContract_NumericKind(t *testing.T) {
	c := DefaultContract()
	tbl := engineeredTable(t, c, 1)
	require.NoError(t, tbl.PutStrings("amount", []string{"1"}))

	err := c.ValidateTable(tbl)
	assert.True(t, core.IsInvalidInput(err))
	assert.Nil(t, core.GetMissingColumns(err))
}

func TestContract_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Contract)
		wantErr bool
	}{
		{name: "default", mutate: func(*Contract) {}},
		{name: "no numerical", mutate: func(c *Contract) { c.Numerical = nil }, wantErr: true},
		{name: "no categorical", mutate: func(c *Contract) { c.Categorical = nil }, wantErr: true},
		{name: "no label", mutate: func(c *Contract) { c.Label = "" }, wantErr: true},
		{name: "duplicate", mutate: func(c *Contract) { c.Categorical = append(c.Categorical, "amount") }, wantErr: true},
		{name: "label is feature", mutate: func(c *Contract) { c.Label = "amount" }, wantErr: true},
		{name: "empty name", mutate: func(c *Contract) { c.Numerical = append(c.Numerical, "") }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultContract()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.True(t, core.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
