package config

import "time"

// Default values applied by ApplyDefaults.  Thresholds and batch sizes mirror
// the documented operational defaults: 0.75 for the advanced cascade, 0.85
// for the simple lookup, interaction batches in the thousands.
const (
	DefaultNeo4jURI            = "bolt://localhost:7687"
	DefaultNeo4jUsername       = "neo4j"
	DefaultNeo4jDatabase       = "neo4j"
	DefaultConnectRetries      = 5
	DefaultConnectRetryBackoff = 5 * time.Second
	DefaultConnectionTimeout   = 10 * time.Second
	DefaultMaxPoolSize         = 50

	DefaultMappingThreshold   = 0.75
	DefaultSimpleThreshold    = 0.85
	DefaultEdgeBatchSize      = 500
	DefaultUnmappedExportPath = "unmapped_medications.csv"

	DefaultInteractionBatchSize     = 5000
	DefaultInteractionProgressEvery = 50000

	DefaultSyntheaImportDir = "/import"
	DefaultSyntheaBatchSize = 2000

	DefaultMetricsListenAddr = ":9464"
)

// ApplyDefaults fills every unset field of cfg with its documented default.
// It never overwrites a value the operator has provided.
func ApplyDefaults(cfg *Config) {
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.Username == "" {
		cfg.Neo4j.Username = DefaultNeo4jUsername
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize <= 0 {
		cfg.Neo4j.MaxConnectionPoolSize = DefaultMaxPoolSize
	}
	if cfg.Neo4j.ConnectionTimeout <= 0 {
		cfg.Neo4j.ConnectionTimeout = DefaultConnectionTimeout
	}
	if cfg.Neo4j.ConnectRetries <= 0 {
		cfg.Neo4j.ConnectRetries = DefaultConnectRetries
	}
	if cfg.Neo4j.ConnectRetryBackoff <= 0 {
		cfg.Neo4j.ConnectRetryBackoff = DefaultConnectRetryBackoff
	}

	if cfg.Mapping.Threshold == 0 {
		cfg.Mapping.Threshold = DefaultMappingThreshold
	}
	if cfg.Mapping.SimpleThreshold == 0 {
		cfg.Mapping.SimpleThreshold = DefaultSimpleThreshold
	}
	if cfg.Mapping.EdgeBatchSize <= 0 {
		cfg.Mapping.EdgeBatchSize = DefaultEdgeBatchSize
	}
	if cfg.Mapping.UnmappedExportPath == "" {
		cfg.Mapping.UnmappedExportPath = DefaultUnmappedExportPath
	}

	if cfg.Interactions.BatchSize <= 0 {
		cfg.Interactions.BatchSize = DefaultInteractionBatchSize
	}
	if cfg.Interactions.ProgressEvery <= 0 {
		cfg.Interactions.ProgressEvery = DefaultInteractionProgressEvery
	}

	if cfg.Synthea.ImportDir == "" {
		cfg.Synthea.ImportDir = DefaultSyntheaImportDir
	}
	if cfg.Synthea.BatchSize <= 0 {
		cfg.Synthea.BatchSize = DefaultSyntheaBatchSize
	}

	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = DefaultMetricsListenAddr
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
