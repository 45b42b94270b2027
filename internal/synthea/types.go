// Package synthea ingests synthetic healthcare record exports: CSV files for
// patients, encounters, conditions, procedures and medications, loaded into
// the graph through batched upserts.
package synthea

import "context"

// Patient is one row of patients.csv, trimmed to the demographic fields the
// graph keeps.
type Patient struct {
	ID        string
	BirthDate string
	DeathDate string
	First     string
	Last      string
	Marital   string
	Race      string
	Ethnicity string
	Gender    string
	City      string
	State     string
}

// Encounter is one row of encounters.csv.
type Encounter struct {
	ID          string
	Start       string
	Stop        string
	PatientID   string
	Class       string
	Code        string
	Description string
}

// Condition is one row of conditions.csv.
type Condition struct {
	Start       string
	Stop        string
	PatientID   string
	EncounterID string
	Code        string
	Description string
}

// Procedure is one row of procedures.csv.
type Procedure struct {
	Start       string
	PatientID   string
	EncounterID string
	Code        string
	Description string
}

// Medication is one row of medications.csv.  Code and Description feed the
// distinct medication nodes the mapping pipeline later works on.
type Medication struct {
	Start       string
	Stop        string
	PatientID   string
	EncounterID string
	Code        string
	Description string
}

// Repository is the graph-side persistence surface of the ingestion.  All
// methods are batched and idempotent.
type Repository interface {
	UpsertPatients(ctx context.Context, batch []Patient) error
	UpsertEncounters(ctx context.Context, batch []Encounter) error
	UpsertConditions(ctx context.Context, batch []Condition) error
	UpsertProcedures(ctx context.Context, batch []Procedure) error
	UpsertMedications(ctx context.Context, batch []Medication) error
}
