package synthea

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

// Reader parses the export CSVs.  Column positions come from the header row,
// matched case-insensitively, so column reordering between export versions is
// harmless.
type Reader struct {
	log logging.Logger
}

// NewReader constructs a Reader.
func NewReader(log logging.Logger) *Reader {
	return &Reader{log: log.Named("synthea")}
}

// row is one parsed CSV record with header-keyed access.
type row struct {
	cols   map[string]int
	record []string
}

func (r row) field(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// readRows streams the file through visit, skipping unreadable records with a
// warning.  Column names are lower-cased.
func (r *Reader) readRows(path string, visit func(row)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeSyntheaFile, "open %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeSyntheaParse, "read header of %s", path)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			r.log.Warn("skipping unreadable row", logging.String("file", path), logging.Err(err))
			continue
		}
		visit(row{cols: cols, record: record})
	}
	if skipped > 0 {
		r.log.Warn("rows skipped", logging.String("file", path), logging.Int("count", skipped))
	}
	return nil
}

// Patients reads patients.csv.
func (r *Reader) Patients(path string) ([]Patient, error) {
	var out []Patient
	err := r.readRows(path, func(row row) {
		p := Patient{
			ID:        row.field("id"),
			BirthDate: row.field("birthdate"),
			DeathDate: row.field("deathdate"),
			First:     row.field("first"),
			Last:      row.field("last"),
			Marital:   row.field("marital"),
			Race:      row.field("race"),
			Ethnicity: row.field("ethnicity"),
			Gender:    row.field("gender"),
			City:      row.field("city"),
			State:     row.field("state"),
		}
		if p.ID == "" {
			r.log.Warn("skipping patient row without id", logging.String("file", path))
			return
		}
		out = append(out, p)
	})
	return out, err
}

// Encounters reads encounters.csv.
func (r *Reader) Encounters(path string) ([]Encounter, error) {
	var out []Encounter
	err := r.readRows(path, func(row row) {
		e := Encounter{
			ID:          row.field("id"),
			Start:       row.field("start"),
			Stop:        row.field("stop"),
			PatientID:   row.field("patient"),
			Class:       row.field("encounterclass"),
			Code:        row.field("code"),
			Description: row.field("description"),
		}
		if e.ID == "" || e.PatientID == "" {
			r.log.Warn("skipping encounter row without ids", logging.String("file", path))
			return
		}
		out = append(out, e)
	})
	return out, err
}

// Conditions reads conditions.csv.
func (r *Reader) Conditions(path string) ([]Condition, error) {
	var out []Condition
	err := r.readRows(path, func(row row) {
		c := Condition{
			Start:       row.field("start"),
			Stop:        row.field("stop"),
			PatientID:   row.field("patient"),
			EncounterID: row.field("encounter"),
			Code:        row.field("code"),
			Description: row.field("description"),
		}
		if c.PatientID == "" || c.Code == "" {
			return
		}
		out = append(out, c)
	})
	return out, err
}

// Procedures reads procedures.csv.
func (r *Reader) Procedures(path string) ([]Procedure, error) {
	var out []Procedure
	err := r.readRows(path, func(row row) {
		p := Procedure{
			Start:       row.field("start"),
			PatientID:   row.field("patient"),
			EncounterID: row.field("encounter"),
			Code:        row.field("code"),
			Description: row.field("description"),
		}
		if p.PatientID == "" || p.Code == "" {
			return
		}
		out = append(out, p)
	})
	return out, err
}

// Medications reads medications.csv.
func (r *Reader) Medications(path string) ([]Medication, error) {
	var out []Medication
	err := r.readRows(path, func(row row) {
		m := Medication{
			Start:       row.field("start"),
			Stop:        row.field("stop"),
			PatientID:   row.field("patient"),
			EncounterID: row.field("encounter"),
			Code:        row.field("code"),
			Description: row.field("description"),
		}
		if m.PatientID == "" || m.Code == "" {
			return
		}
		out = append(out, m)
	})
	return out, err
}
