package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelRule_Apply(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		label float64
		want  int
	}{
		{name: "bool true", expr: "label > 0.5", label: 0.9, want: 1},
		{name: "bool false", expr: "label > 0.5", label: 0.2, want: 0},
		{name: "int literal compare", expr: "label >= 1", label: 1, want: 1},
		{name: "ternary int", expr: "label >= 1.0 ? 1 : 0", label: 3, want: 1},
		{name: "int conversion", expr: "int(label)", label: 2.7, want: 2},
		{name: "double truncation", expr: "label * 2.0", label: -0.75, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewLabelRule(tt.expr)
			require.NoError(t, err)
			got, err := rule.Apply(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expr, rule.String())
		})
	}
}

func TestNewLabelRule_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "syntax", expr: "label >"},
		{name: "unknown variable", expr: "item.score > 1"},
		{name: "string result", expr: `"fraud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLabelRule(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestLabelRule_NonFiniteResult(t *testing.T) {
	rule, err := NewLabelRule("label / 0.0")
	require.NoError(t, err)
	_, err = rule.Apply(1)
	assert.Error(t, err)
}
