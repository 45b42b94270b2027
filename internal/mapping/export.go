package mapping

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

// ExportUnmapped writes the unmapped medications of a run to a review CSV at
// path.  The suggestion columns stay empty for a curator to fill in and feed
// back as overrides.
func ExportUnmapped(result *drug.MappingResult, path string, log logging.Logger) error {
	if result.UnmappedCount() == 0 {
		log.Info("no unmapped medications, skipping export")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeExportFailed, "create export file %s", path)
	}
	defer f.Close()

	if err := WriteUnmapped(result.Unmapped, f); err != nil {
		return err
	}
	log.Info("unmapped medications exported",
		logging.String("path", path),
		logging.Int("count", result.UnmappedCount()))
	return nil
}

// WriteUnmapped renders the review CSV to w.
func WriteUnmapped(unmapped []drug.UnmappedMedication, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"synthea_description", "extracted_name", "suggested_drugbank_id", "confidence", "notes",
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "write export header")
	}
	for _, u := range unmapped {
		if err := cw.Write([]string{u.Description, u.ExtractedName, "", "", ""}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "write export row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "flush export")
	}
	return nil
}
