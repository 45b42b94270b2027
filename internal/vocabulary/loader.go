package vocabulary

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

// Expected header columns of the vocabulary CSV.  Matching is
// case-insensitive; column order is taken from the header row, not assumed.
const (
	colID       = "drugbank id"
	colName     = "common name"
	colCAS      = "cas"
	colUNII     = "unii"
	colSynonyms = "synonyms"
	colInChIKey = "standard inchi key"
)

// Loader reads the vocabulary CSV into a Store.
type Loader struct {
	log logging.Logger
}

// NewLoader constructs a Loader.
func NewLoader(log logging.Logger) *Loader {
	return &Loader{log: log.Named("vocabulary")}
}

// LoadFile opens and loads the vocabulary CSV at path.
func (l *Loader) LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeVocabularyFile, "failed to open vocabulary file %q", path)
	}
	defer f.Close()
	return l.Load(f)
}

// Load parses vocabulary CSV content from r.  Rows missing the drug
// identifier or canonical name are skipped with a logged warning; the load
// continues (partial-success policy).
func (l *Loader) Load(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated per field below

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVocabularyParse, "failed to read vocabulary header")
	}

	cols := indexColumns(header)
	idIdx := cols.index(colID)
	if idIdx < 0 {
		return nil, errors.Newf(errors.ErrCodeVocabularyParse, "vocabulary header missing %q column", colID)
	}
	nameIdx := cols.index(colName)
	if nameIdx < 0 {
		return nil, errors.Newf(errors.ErrCodeVocabularyParse, "vocabulary header missing %q column", colName)
	}

	var entries []Entry
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			l.log.Warn("skipping unreadable vocabulary row", logging.Int("line", line), logging.Err(err))
			skipped++
			continue
		}

		id := strings.TrimSpace(field(record, idIdx))
		name := strings.TrimSpace(field(record, nameIdx))
		if id == "" || name == "" {
			l.log.Warn("skipping vocabulary row with missing identifier or name", logging.Int("line", line))
			skipped++
			continue
		}

		entries = append(entries, newEntry(drug.ReferenceDrug{
			ID:       id,
			Name:     name,
			Synonyms: splitSynonyms(field(record, cols.index(colSynonyms))),
			CAS:      cleanIdentifier(field(record, cols.index(colCAS))),
			UNII:     cleanIdentifier(field(record, cols.index(colUNII))),
			InChIKey: cleanIdentifier(field(record, cols.index(colInChIKey))),
		}))
	}

	store := newStore(entries)
	l.log.Info("loaded drug vocabulary",
		logging.Int("drugs", store.Len()),
		logging.Int("skipped_rows", skipped),
	)
	return store, nil
}

// columnIndex maps lower-cased header names to their positions.
type columnIndex map[string]int

// index returns the position of the named column, or -1 when absent.
func (c columnIndex) index(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

func indexColumns(header []string) columnIndex {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// field returns record[idx] or "" when the column is absent or the row is too
// short.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// cleanIdentifier normalises the source's null placeholders to the empty
// string.
func cleanIdentifier(raw string) string {
	t := strings.TrimSpace(raw)
	switch t {
	case "", "N/A", "NULL", "null":
		return ""
	}
	return t
}
