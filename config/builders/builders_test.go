package builders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/config"
	"github.com/rushteam/txnprep/core"
)

func TestBuiltinBackendsRegistered(t *testing.T) {
	assert.Equal(t, []string{"file", "http", "memory", "redis"}, config.SupportedBackends())
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		cfg      config.StoreConfig
		wantName string
		wantErr  bool
	}{
		{name: "default is file", cfg: config.StoreConfig{}, wantName: "file"},
		{name: "file with root", cfg: config.StoreConfig{Backend: "file", Options: map[string]any{"root": t.TempDir()}}, wantName: "file"},
		{name: "memory", cfg: config.StoreConfig{Backend: "memory"}, wantName: "memory"},
		{name: "http", cfg: config.StoreConfig{Backend: "http", Options: map[string]any{"base_url": "http://localhost", "timeout": 3}}, wantName: "http"},
		{name: "http without url", cfg: config.StoreConfig{Backend: "http"}, wantErr: true},
		{name: "redis without addr", cfg: config.StoreConfig{Backend: "redis"}, wantErr: true},
		{name: "unknown", cfg: config.StoreConfig{Backend: "s3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := config.BuildStore(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestUnknownBackendListsSupported(t *testing.T) {
	err := config.StoreConfig{Backend: "s3"}.Validate()
	require.Error(t, err)
	assert.True(t, core.IsNotSupported(err))
	assert.Contains(t, err.Error(), "memory")
}
