package graph

import (
	"context"

	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/synthea"
)

type syntheaRepo struct {
	driver *Driver
	log    logging.Logger
}

// NewSyntheaRepository builds the Neo4j-backed ingestion repository.
func NewSyntheaRepository(d *Driver, log logging.Logger) synthea.Repository {
	return &syntheaRepo{driver: d, log: log.Named("synthea_repo")}
}

func (r *syntheaRepo) write(ctx context.Context, query string, batch []map[string]any) error {
	if len(batch) == 0 {
		return nil
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	return err
}

func (r *syntheaRepo) UpsertPatients(ctx context.Context, batch []synthea.Patient) error {
	query := `
		UNWIND $batch AS row
		MERGE (p:Patient {patient_id: row.id})
		SET p.birthDate = CASE WHEN row.birth_date IS NOT NULL THEN date(row.birth_date) ELSE null END,
		    p.deathDate = CASE WHEN row.death_date IS NOT NULL THEN date(row.death_date) ELSE null END,
		    p.given = row.first,
		    p.family = row.last,
		    p.maritalStatus = row.marital,
		    p.race = row.race,
		    p.ethnicity = row.ethnicity,
		    p.gender = row.gender,
		    p.city = row.city,
		    p.state = row.state
	`
	rows := make([]map[string]any, 0, len(batch))
	for _, p := range batch {
		rows = append(rows, map[string]any{
			"id":         p.ID,
			"birth_date": orNil(p.BirthDate),
			"death_date": orNil(p.DeathDate),
			"first":      p.First,
			"last":       p.Last,
			"marital":    p.Marital,
			"race":       p.Race,
			"ethnicity":  p.Ethnicity,
			"gender":     p.Gender,
			"city":       p.City,
			"state":      p.State,
		})
	}
	return r.write(ctx, query, rows)
}

func (r *syntheaRepo) UpsertEncounters(ctx context.Context, batch []synthea.Encounter) error {
	query := `
		UNWIND $batch AS row
		MERGE (e:Encounter {encounter_id: row.id})
		SET e.start = CASE WHEN row.start IS NOT NULL THEN datetime(row.start) ELSE null END,
		    e.stop = CASE WHEN row.stop IS NOT NULL THEN datetime(row.stop) ELSE null END,
		    e.encounterClass = row.class,
		    e.code = row.code,
		    e.description = row.description
		WITH e, row
		MATCH (p:Patient {patient_id: row.patient})
		MERGE (p)-[:HAD_ENCOUNTER]->(e)
	`
	rows := make([]map[string]any, 0, len(batch))
	for _, e := range batch {
		rows = append(rows, map[string]any{
			"id":          e.ID,
			"start":       orNil(e.Start),
			"stop":        orNil(e.Stop),
			"patient":     e.PatientID,
			"class":       e.Class,
			"code":        e.Code,
			"description": e.Description,
		})
	}
	return r.write(ctx, query, rows)
}

func (r *syntheaRepo) UpsertConditions(ctx context.Context, batch []synthea.Condition) error {
	query := `
		UNWIND $batch AS row
		MERGE (c:Condition {code: row.code})
		SET c.description = row.description
		WITH c, row
		MATCH (p:Patient {patient_id: row.patient})
		MERGE (p)-[r:HAS_CONDITION]->(c)
		SET r.start = CASE WHEN row.start IS NOT NULL THEN datetime(row.start) ELSE null END,
		    r.stop = CASE WHEN row.stop IS NOT NULL THEN datetime(row.stop) ELSE null END
	`
	rows := make([]map[string]any, 0, len(batch))
	for _, c := range batch {
		rows = append(rows, map[string]any{
			"code":        c.Code,
			"description": c.Description,
			"patient":     c.PatientID,
			"start":       orNil(c.Start),
			"stop":        orNil(c.Stop),
		})
	}
	return r.write(ctx, query, rows)
}

func (r *syntheaRepo) UpsertProcedures(ctx context.Context, batch []synthea.Procedure) error {
	query := `
		UNWIND $batch AS row
		MERGE (pr:Procedure {code: row.code})
		SET pr.description = row.description
		WITH pr, row
		MATCH (e:Encounter {encounter_id: row.encounter})
		MERGE (e)-[r:PERFORMED]->(pr)
		SET r.start = CASE WHEN row.start IS NOT NULL THEN datetime(row.start) ELSE null END
	`
	rows := make([]map[string]any, 0, len(batch))
	for _, p := range batch {
		rows = append(rows, map[string]any{
			"code":        p.Code,
			"description": p.Description,
			"encounter":   p.EncounterID,
			"start":       orNil(p.Start),
		})
	}
	return r.write(ctx, query, rows)
}

func (r *syntheaRepo) UpsertMedications(ctx context.Context, batch []synthea.Medication) error {
	// Medication nodes and TAKES_MEDICATION edges feed the mapping pipeline;
	// PRESCRIBED ties prescriptions back to their encounter.
	query := `
		UNWIND $batch AS row
		MERGE (m:Medication {code: row.code})
		SET m.description = row.description
		WITH m, row
		MATCH (p:Patient {patient_id: row.patient})
		MERGE (p)-[r:TAKES_MEDICATION]->(m)
		SET r.start = CASE WHEN row.start IS NOT NULL THEN datetime(row.start) ELSE null END,
		    r.stop = CASE WHEN row.stop IS NOT NULL THEN datetime(row.stop) ELSE null END
		WITH m, row
		WHERE row.encounter IS NOT NULL
		MATCH (e:Encounter {encounter_id: row.encounter})
		MERGE (e)-[:PRESCRIBED]->(m)
	`
	rows := make([]map[string]any, 0, len(batch))
	for _, m := range batch {
		rows = append(rows, map[string]any{
			"code":        m.Code,
			"description": m.Description,
			"patient":     m.PatientID,
			"encounter":   orNil(m.EncounterID),
			"start":       orNil(m.Start),
			"stop":        orNil(m.Stop),
		})
	}
	return r.write(ctx, query, rows)
}

// orNil maps empty CSV fields to Cypher nulls so CASE WHEN guards work.
func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
