package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 384, cfg.Dimensions)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://remote:9100/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithDimensions(768),
		WithProbeTimeout(time.Second),
	)
	assert.Equal(t, "http://remote:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.Dimensions)
	assert.Equal(t, time.Second, cfg.ProbeTimeout)
}

func TestConfigNormalize_AddsV1Suffix(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithEmbeddingHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	cfg = NewConfig(WithEmbeddingModel(""))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig(WithDimensions(-1))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig(WithProbeTimeout(0))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.EmbeddingHost = ""
	assert.Error(t, cfg.Validate())
}
