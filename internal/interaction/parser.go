package interaction

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

// Summary reports what one parsing pass covered.
type Summary struct {
	Drugs        int
	Interactions int
}

// Parser streams interaction triples out of the reference XML export without
// materialising the document.  The export runs to gigabytes, so the parser
// walks the token stream and emits each (source, target, description) triple
// through a callback as soon as it is complete.
type Parser struct {
	log logging.Logger

	// ProgressEvery controls how often a progress line is logged, counted
	// in emitted interactions.  Zero disables progress logging.
	ProgressEvery int
}

// NewParser constructs a Parser.
func NewParser(log logging.Logger) *Parser {
	return &Parser{log: log.Named("interaction")}
}

// ParseFile opens path and parses it with Parse.
func (p *Parser) ParseFile(ctx context.Context, path string, firstN int, emit func(drug.Interaction) error) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, errors.Wrapf(err, errors.ErrCodeInteractionFile, "open interactions file %s", path)
	}
	defer f.Close()
	return p.Parse(ctx, f, firstN, emit)
}

// interactionRecord mirrors one <drug-interaction> element.
type interactionRecord struct {
	DrugbankID  string `xml:"drugbank-id"`
	Description string `xml:"description"`
}

// Parse walks the XML token stream and calls emit for every interaction of
// every top-level drug record.  firstN > 0 stops the walk after that many drug
// records, used for smoke loads against the full export.  A non-nil error from
// emit aborts the walk and is returned unchanged.
//
// Only <drug> elements directly under the document root open a new record;
// the export nests further <drug> elements inside pathway sections and those
// must not reset the current source id.
func (p *Parser) Parse(ctx context.Context, r io.Reader, firstN int, emit func(drug.Interaction) error) (Summary, error) {
	dec := xml.NewDecoder(r)

	var (
		sum       Summary
		drugDepth int
		sourceID  string
	)

	for {
		if err := ctx.Err(); err != nil {
			return sum, errors.Wrap(err, errors.ErrCodeTimeout, "interaction parse cancelled")
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, errors.Wrap(err, errors.ErrCodeInteractionParse, "read xml token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "drug":
				drugDepth++
				if drugDepth == 1 {
					sum.Drugs++
					sourceID = ""
				}

			case "drugbank-id":
				// Only the primary id of a top-level drug names the
				// interaction source.
				if drugDepth == 1 && sourceID == "" && hasPrimaryAttr(t) {
					var id string
					if err := dec.DecodeElement(&id, &t); err != nil {
						return sum, errors.Wrap(err, errors.ErrCodeInteractionParse, "decode drugbank-id")
					}
					sourceID = strings.TrimSpace(id)
				}

			case "drug-interaction":
				var rec interactionRecord
				if err := dec.DecodeElement(&rec, &t); err != nil {
					return sum, errors.Wrap(err, errors.ErrCodeInteractionParse, "decode drug-interaction")
				}
				target := strings.TrimSpace(rec.DrugbankID)
				if sourceID == "" || target == "" {
					continue
				}
				if err := emit(drug.Interaction{
					SourceID:    sourceID,
					TargetID:    target,
					Description: strings.TrimSpace(rec.Description),
				}); err != nil {
					return sum, err
				}
				sum.Interactions++
				if p.ProgressEvery > 0 && sum.Interactions%p.ProgressEvery == 0 {
					p.log.Info("parsing interactions",
						logging.Int("drugs", sum.Drugs),
						logging.Int("interactions", sum.Interactions))
				}
			}

		case xml.EndElement:
			if t.Name.Local == "drug" {
				drugDepth--
				if drugDepth == 0 && firstN > 0 && sum.Drugs >= firstN {
					p.log.Info("first-n limit reached", logging.Int("drugs", sum.Drugs))
					return sum, nil
				}
			}
		}
	}

	return sum, nil
}

func hasPrimaryAttr(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == "primary" && attr.Value == "true" {
			return true
		}
	}
	return false
}
