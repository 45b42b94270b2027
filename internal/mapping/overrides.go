// Package mapping orchestrates a mapping run: read the in-use medications,
// resolve each one through overrides and the matching engine, persist the
// edges in batches and summarise the outcome.
package mapping

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

// defaultOverrideConfidence applies when the override row leaves the
// confidence column empty.
const defaultOverrideConfidence = 1.0

// LoadOverrides reads the manual override CSV keyed by medication code.  An
// absent file is not an error: overrides are optional curation input.
func LoadOverrides(path string, log logging.Logger) (map[string]drug.ManualOverride, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Info("no override file, skipping", logging.String("path", path))
		return map[string]drug.ManualOverride{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeOverrideParse, "open overrides %s", path)
	}
	defer f.Close()
	return ReadOverrides(f, log)
}

// ReadOverrides parses override rows: synthea_code, drugbank_id, confidence,
// reason.  Malformed rows are skipped with a warning.
func ReadOverrides(r io.Reader, log logging.Logger) (map[string]drug.ManualOverride, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return map[string]drug.ManualOverride{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOverrideParse, "read override header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"synthea_code", "drugbank_id"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Newf(errors.ErrCodeOverrideParse, "override file missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	overrides := make(map[string]drug.ManualOverride)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("skipping unreadable override row", logging.Err(err))
			continue
		}

		o := drug.ManualOverride{
			Code:       field(record, "synthea_code"),
			DrugID:     field(record, "drugbank_id"),
			Confidence: defaultOverrideConfidence,
			Reason:     field(record, "reason"),
		}
		if o.Code == "" || o.DrugID == "" {
			log.Warn("skipping override row without code or drug id")
			continue
		}
		if raw := field(record, "confidence"); raw != "" {
			conf, err := strconv.ParseFloat(raw, 64)
			if err != nil || conf <= 0 || conf > 1 {
				log.Warn("skipping override row with bad confidence",
					logging.String("code", o.Code),
					logging.String("confidence", raw))
				continue
			}
			o.Confidence = conf
		}
		overrides[o.Code] = o
	}

	log.Info("overrides loaded", logging.Int("count", len(overrides)))
	return overrides, nil
}
