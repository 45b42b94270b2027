package graph

import (
	"context"
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
)

type drugRepo struct {
	driver *Driver
	log    logging.Logger
}

// NewDrugRepository builds the Neo4j-backed reference drug repository.
func NewDrugRepository(d *Driver, log logging.Logger) drug.DrugRepository {
	return &drugRepo{driver: d, log: log.Named("drug_repo")}
}

func (r *drugRepo) EnsureConstraints(ctx context.Context) error {
	query := `
		CREATE CONSTRAINT drugbank_id_unique IF NOT EXISTS
		FOR (d:DrugBankDrug) REQUIRE d.drugbank_id IS UNIQUE
	`
	_, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	return err
}

func (r *drugRepo) UpsertDrugs(ctx context.Context, drugs []drug.ReferenceDrug) error {
	if len(drugs) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MERGE (d:DrugBankDrug {drugbank_id: row.drugbank_id})
		SET d.name = row.name,
		    d.synonyms = row.synonyms,
		    d.cas = row.cas,
		    d.unii = row.unii,
		    d.inchi_key = row.inchi_key
	`
	batch := make([]map[string]any, 0, len(drugs))
	for _, d := range drugs {
		batch = append(batch, map[string]any{
			"drugbank_id": d.ID,
			"name":        d.Name,
			"synonyms":    strings.Join(d.Synonyms, " | "),
			"cas":         d.CAS,
			"unii":        d.UNII,
			"inchi_key":   d.InChIKey,
		})
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	return err
}

func (r *drugRepo) UpsertInteractions(ctx context.Context, edges []drug.InteractionEdge) error {
	if len(edges) == 0 {
		return nil
	}
	// Undirected merge: one relationship per pair, whichever direction the
	// export listed it in.
	query := `
		UNWIND $batch AS row
		MATCH (d1:DrugBankDrug {drugbank_id: row.source})
		MATCH (d2:DrugBankDrug {drugbank_id: row.target})
		MERGE (d1)-[i:INTERACTS_WITH]-(d2)
		SET i.description = row.description,
		    i.severity = row.severity
	`
	batch := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		batch = append(batch, map[string]any{
			"source":      e.SourceID,
			"target":      e.TargetID,
			"description": e.Description,
			"severity":    string(e.Severity),
		})
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	return err
}

func (r *drugRepo) Stats(ctx context.Context) (drug.GraphStats, error) {
	query := `
		OPTIONAL MATCH (p:Patient)
		WITH count(p) AS patients
		OPTIONAL MATCH (m:Medication)
		WITH patients, count(m) AS medications
		OPTIONAL MATCH (d:DrugBankDrug)
		WITH patients, medications, count(d) AS drugs
		OPTIONAL MATCH ()-[t:TAKES_MEDICATION]->()
		WITH patients, medications, drugs, count(t) AS takes
		OPTIONAL MATCH ()-[mp:MAPPED_TO]->()
		WITH patients, medications, drugs, takes, count(mp) AS mapped
		OPTIONAL MATCH ()-[i:INTERACTS_WITH]-()
		WITH patients, medications, drugs, takes, mapped, count(DISTINCT i) AS interactions
		OPTIONAL MATCH (mm:Medication)-[:MAPPED_TO]->(:DrugBankDrug)
		RETURN patients, medications, drugs, takes, mapped, interactions,
		       count(DISTINCT mm) AS mapped_medications
	`
	res, err := r.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			if err := result.Err(); err != nil {
				return nil, err
			}
			return drug.GraphStats{}, nil
		}
		rec := result.Record()
		return drug.GraphStats{
			Patients:          int64Value(rec, "patients"),
			Medications:       int64Value(rec, "medications"),
			ReferenceDrugs:    int64Value(rec, "drugs"),
			TakesMedication:   int64Value(rec, "takes"),
			MappedTo:          int64Value(rec, "mapped"),
			InteractsWith:     int64Value(rec, "interactions"),
			MappedMedications: int64Value(rec, "mapped_medications"),
		}, nil
	})
	if err != nil {
		return drug.GraphStats{}, err
	}
	return res.(drug.GraphStats), nil
}
