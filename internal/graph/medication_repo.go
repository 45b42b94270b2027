package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
)

type medicationRepo struct {
	driver *Driver
	log    logging.Logger
}

// NewMedicationRepository builds the Neo4j-backed medication repository.
func NewMedicationRepository(d *Driver, log logging.Logger) drug.MedicationRepository {
	return &medicationRepo{driver: d, log: log.Named("medication_repo")}
}

func (r *medicationRepo) DistinctInUse(ctx context.Context) ([]drug.MedicationRecord, error) {
	query := `
		MATCH (p:Patient)-[:TAKES_MEDICATION]->(m:Medication)
		WITH DISTINCT m
		RETURN m.code AS code, m.description AS description
	`
	res, err := r.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, result, func(rec *neo4j.Record) (drug.MedicationRecord, error) {
			return drug.MedicationRecord{
				Code:        stringValue(rec, "code"),
				Description: stringValue(rec, "description"),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]drug.MedicationRecord), nil
}

func (r *medicationRepo) DeleteAllMappings(ctx context.Context) (int64, error) {
	query := `
		MATCH ()-[old:MAPPED_TO]->()
		DELETE old
	`
	res, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return int64(summary.Counters().RelationshipsDeleted()), nil
	})
	if err != nil {
		return 0, err
	}
	deleted := res.(int64)
	r.log.Info("deleted existing mapping edges", logging.Int64("count", deleted))
	return deleted, nil
}

func (r *medicationRepo) UpsertMappingEdges(ctx context.Context, edges []drug.MappingEdge) error {
	if len(edges) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MATCH (m:Medication {code: row.code})
		MATCH (d:DrugBankDrug {drugbank_id: row.drugbank_id})
		MERGE (m)-[r:MAPPED_TO]->(d)
		SET r.confidence = row.confidence,
		    r.method = row.method,
		    r.extracted_name = row.extracted_name,
		    r.created = row.created
	`
	batch := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		batch = append(batch, map[string]any{
			"code":           e.Code,
			"drugbank_id":    e.DrugID,
			"confidence":     e.Confidence,
			"method":         string(e.Method),
			"extracted_name": e.ExtractedName,
			"created":        e.Created.UTC(),
		})
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	return err
}

func (r *medicationRepo) VerifyInteractions(ctx context.Context) (drug.InteractionStats, error) {
	query := `
		MATCH (p:Patient)-[:TAKES_MEDICATION]->(m1:Medication)-[:MAPPED_TO]->(d1:DrugBankDrug)
		MATCH (p)-[:TAKES_MEDICATION]->(m2:Medication)-[:MAPPED_TO]->(d2:DrugBankDrug)
		MATCH (d1)-[i:INTERACTS_WITH]-(d2)
		WHERE id(m1) < id(m2)
		RETURN i.severity AS severity, count(*) AS hits
	`
	res, err := r.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		var stats drug.InteractionStats
		for result.Next(ctx) {
			rec := result.Record()
			hits := int64Value(rec, "hits")
			stats.Total += hits
			switch drug.Severity(stringValue(rec, "severity")) {
			case drug.SeverityHigh:
				stats.High += hits
			case drug.SeverityModerate:
				stats.Moderate += hits
			default:
				stats.Low += hits
			}
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return stats, nil
	})
	if err != nil {
		return drug.InteractionStats{}, err
	}
	return res.(drug.InteractionStats), nil
}

func (r *medicationRepo) InteractionExamples(ctx context.Context, limit int) ([]drug.InteractionExample, error) {
	query := `
		MATCH (p:Patient)-[:TAKES_MEDICATION]->(m1:Medication)-[:MAPPED_TO]->(d1:DrugBankDrug)
		MATCH (p)-[:TAKES_MEDICATION]->(m2:Medication)-[:MAPPED_TO]->(d2:DrugBankDrug)
		MATCH (d1)-[i:INTERACTS_WITH]-(d2)
		WHERE id(m1) < id(m2)
		RETURN p.patient_id AS patient,
		       m1.description AS medication1, m2.description AS medication2,
		       d1.name AS drug1, d2.name AS drug2,
		       i.severity AS severity, i.description AS description
		LIMIT $limit
	`
	res, err := r.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"limit": limit})
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, result, func(rec *neo4j.Record) (drug.InteractionExample, error) {
			return drug.InteractionExample{
				Patient:     stringValue(rec, "patient"),
				Medication1: stringValue(rec, "medication1"),
				Medication2: stringValue(rec, "medication2"),
				Drug1:       stringValue(rec, "drug1"),
				Drug2:       stringValue(rec, "drug2"),
				Severity:    drug.Severity(stringValue(rec, "severity")),
				Description: stringValue(rec, "description"),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]drug.InteractionExample), nil
}

// stringValue reads a string column from a record, tolerating nulls.
func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func int64Value(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	n, _ := v.(int64)
	return n
}
