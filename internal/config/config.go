// Package config defines all configuration structures for the medgraph ETL
// pipeline.  No I/O or parsing logic lives here — only plain data types and
// validation; loading lives in loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/medgraph/medgraph/internal/logging"
)

// Neo4jConfig holds graph-store connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	Username              string        `mapstructure:"username"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	ConnectRetries        int           `mapstructure:"connect_retries"`
	ConnectRetryBackoff   time.Duration `mapstructure:"connect_retry_backoff"`
}

// VocabularyConfig locates the drug reference vocabulary CSV.
type VocabularyConfig struct {
	Path string `mapstructure:"path"`
}

// InteractionsConfig tunes the streaming interaction load.
type InteractionsConfig struct {
	XMLPath string `mapstructure:"xml_path"`

	// BatchSize is the number of interaction edges merged per write
	// transaction.
	BatchSize int `mapstructure:"batch_size"`

	// FirstN truncates the stream after N drug records when > 0.  Used for
	// smoke runs against the full multi-gigabyte export.
	FirstN int `mapstructure:"first_n"`

	// ProgressEvery controls how often a progress entry is logged.
	ProgressEvery int `mapstructure:"progress_every"`
}

// MappingConfig tunes the medication mapping run.
type MappingConfig struct {
	// Threshold is the minimum confidence for the advanced strategy cascade.
	Threshold float64 `mapstructure:"threshold"`

	// SimpleThreshold is the minimum confidence for the two-strategy variant.
	SimpleThreshold float64 `mapstructure:"simple_threshold"`

	// EdgeBatchSize is the number of mapping edges upserted per transaction.
	EdgeBatchSize int `mapstructure:"edge_batch_size"`

	// OverridesPath points at the optional manual-override CSV; an absent
	// file is not an error.
	OverridesPath string `mapstructure:"overrides_path"`

	// UnmappedExportPath is where the unmapped-review CSV is written.
	UnmappedExportPath string `mapstructure:"unmapped_export_path"`
}

// SyntheaConfig locates the synthetic patient-record CSV exports.
type SyntheaConfig struct {
	ImportDir string `mapstructure:"import_dir"`
	BatchSize int    `mapstructure:"batch_size"`
}

// MetricsConfig controls the optional Prometheus exposition endpoint kept up
// for the duration of long-running loads.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// Config is the root configuration object.
type Config struct {
	Neo4j        Neo4jConfig        `mapstructure:"neo4j"`
	Vocabulary   VocabularyConfig   `mapstructure:"vocabulary"`
	Interactions InteractionsConfig `mapstructure:"interactions"`
	Mapping      MappingConfig      `mapstructure:"mapping"`
	Synthea      SyntheaConfig      `mapstructure:"synthea"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Log          logging.Config     `mapstructure:"log"`
}

// Validate checks cross-field invariants that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri must not be empty")
	}
	if c.Mapping.Threshold <= 0 || c.Mapping.Threshold > 1 {
		return fmt.Errorf("mapping.threshold must be in (0,1], got %v", c.Mapping.Threshold)
	}
	if c.Mapping.SimpleThreshold <= 0 || c.Mapping.SimpleThreshold > 1 {
		return fmt.Errorf("mapping.simple_threshold must be in (0,1], got %v", c.Mapping.SimpleThreshold)
	}
	if c.Mapping.EdgeBatchSize <= 0 {
		return fmt.Errorf("mapping.edge_batch_size must be positive, got %d", c.Mapping.EdgeBatchSize)
	}
	if c.Interactions.BatchSize <= 0 {
		return fmt.Errorf("interactions.batch_size must be positive, got %d", c.Interactions.BatchSize)
	}
	if c.Synthea.BatchSize <= 0 {
		return fmt.Errorf("synthea.batch_size must be positive, got %d", c.Synthea.BatchSize)
	}
	return nil
}
