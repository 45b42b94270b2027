package interaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<drugbank>
  <drug type="small molecule">
    <drugbank-id primary="true">DB00001</drugbank-id>
    <drugbank-id>BTD00024</drugbank-id>
    <name>Lepirudin</name>
    <drug-interactions>
      <drug-interaction>
        <drugbank-id>DB06605</drugbank-id>
        <name>Apixaban</name>
        <description>The risk of bleeding can be increased.</description>
      </drug-interaction>
      <drug-interaction>
        <drugbank-id>DB00945</drugbank-id>
        <name>Acetylsalicylic acid</name>
        <description>This combination is contraindicated.</description>
      </drug-interaction>
    </drug-interactions>
  </drug>
  <drug type="biotech">
    <drugbank-id primary="true">DB00002</drugbank-id>
    <name>Cetuximab</name>
    <drug-interactions/>
    <pathways>
      <pathway>
        <drugs>
          <drug>
            <drugbank-id>DB00002</drugbank-id>
            <name>Cetuximab</name>
          </drug>
        </drugs>
      </pathway>
    </pathways>
  </drug>
  <drug type="small molecule">
    <drugbank-id primary="true">DB00006</drugbank-id>
    <name>Bivalirudin</name>
    <drug-interactions>
      <drug-interaction>
        <drugbank-id>DB00001</drugbank-id>
        <name>Lepirudin</name>
        <description>Monitor for additive anticoagulant effects.</description>
      </drug-interaction>
    </drug-interactions>
  </drug>
</drugbank>
`

func parseAll(t *testing.T, firstN int) ([]drug.Interaction, Summary) {
	t.Helper()
	var got []drug.Interaction
	sum, err := NewParser(logging.NewNopLogger()).Parse(context.Background(),
		strings.NewReader(sampleXML), firstN,
		func(i drug.Interaction) error {
			got = append(got, i)
			return nil
		})
	require.NoError(t, err)
	return got, sum
}

func TestParseEmitsAllTriples(t *testing.T) {
	got, sum := parseAll(t, 0)

	assert.Equal(t, 3, sum.Drugs)
	assert.Equal(t, 3, sum.Interactions)
	require.Len(t, got, 3)

	assert.Equal(t, drug.Interaction{
		SourceID:    "DB00001",
		TargetID:    "DB06605",
		Description: "The risk of bleeding can be increased.",
	}, got[0])
	assert.Equal(t, "DB00945", got[1].TargetID)
	assert.Equal(t, drug.Interaction{
		SourceID:    "DB00006",
		TargetID:    "DB00001",
		Description: "Monitor for additive anticoagulant effects.",
	}, got[2])
}

func TestParseUsesPrimaryID(t *testing.T) {
	// The secondary id BTD00024 must never appear as a source.
	got, _ := parseAll(t, 0)
	for _, i := range got {
		assert.NotEqual(t, "BTD00024", i.SourceID)
	}
}

func TestParseIgnoresNestedDrugElements(t *testing.T) {
	// The pathway section nests a <drug> element; it must not reset the
	// current record or count as a drug.
	_, sum := parseAll(t, 0)
	assert.Equal(t, 3, sum.Drugs)
}

func TestParseFirstN(t *testing.T) {
	got, sum := parseAll(t, 1)

	assert.Equal(t, 1, sum.Drugs)
	assert.Equal(t, 2, sum.Interactions)
	require.Len(t, got, 2)
	assert.Equal(t, "DB00001", got[0].SourceID)
}

func TestParseEmitErrorAborts(t *testing.T) {
	boom := errors.New(errors.ErrCodeInternal, "boom")
	_, err := NewParser(logging.NewNopLogger()).Parse(context.Background(),
		strings.NewReader(sampleXML), 0,
		func(drug.Interaction) error { return boom })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(logging.NewNopLogger()).Parse(ctx,
		strings.NewReader(sampleXML), 0,
		func(drug.Interaction) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))
}

func TestParseMalformedXML(t *testing.T) {
	_, err := NewParser(logging.NewNopLogger()).Parse(context.Background(),
		strings.NewReader("<drugbank><drug></drugbank>"), 0,
		func(drug.Interaction) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInteractionParse))
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser(logging.NewNopLogger()).ParseFile(context.Background(),
		"/does/not/exist.xml", 0, func(drug.Interaction) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInteractionFile))
}
