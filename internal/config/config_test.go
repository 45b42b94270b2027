package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultNeo4jURI, cfg.Neo4j.URI)
	assert.Equal(t, DefaultConnectRetries, cfg.Neo4j.ConnectRetries)
	assert.Equal(t, DefaultMappingThreshold, cfg.Mapping.Threshold)
	assert.Equal(t, DefaultSimpleThreshold, cfg.Mapping.SimpleThreshold)
	assert.Equal(t, DefaultEdgeBatchSize, cfg.Mapping.EdgeBatchSize)
	assert.Equal(t, DefaultInteractionBatchSize, cfg.Interactions.BatchSize)
	assert.Equal(t, DefaultSyntheaBatchSize, cfg.Synthea.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyDefaultsPreservesOperatorValues(t *testing.T) {
	cfg := &Config{}
	cfg.Neo4j.URI = "bolt://graph:7687"
	cfg.Mapping.Threshold = 0.85
	ApplyDefaults(cfg)

	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, 0.85, cfg.Mapping.Threshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty uri", func(c *Config) { c.Neo4j.URI = "" }, "neo4j.uri"},
		{"threshold too high", func(c *Config) { c.Mapping.Threshold = 1.5 }, "mapping.threshold"},
		{"threshold zero", func(c *Config) { c.Mapping.Threshold = 0 }, "mapping.threshold"},
		{"bad batch size", func(c *Config) { c.Mapping.EdgeBatchSize = -1 }, "edge_batch_size"},
		{"bad interaction batch", func(c *Config) { c.Interactions.BatchSize = 0 }, "interactions.batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medgraph.yaml")
	yaml := `
neo4j:
  uri: bolt://graph:7687
  password: secret
mapping:
  threshold: 0.8
vocabulary:
  path: /data/drugbank/vocabulary.csv
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, 0.8, cfg.Mapping.Threshold)
	assert.Equal(t, "/data/drugbank/vocabulary.csv", cfg.Vocabulary.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset fields still receive defaults.
	assert.Equal(t, DefaultEdgeBatchSize, cfg.Mapping.EdgeBatchSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
