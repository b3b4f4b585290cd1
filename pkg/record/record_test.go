package record_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixgen/fixgen/pkg/record"
)

func TestMintIdentifierDeterminism(t *testing.T) {
	a := record.MintIdentifier("42", "activity", 0)
	b := record.MintIdentifier("42", "activity", 0)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, record.MintIdentifier("42", "activity", 1))
	assert.NotEqual(t, a, record.MintIdentifier("42", "resource", 0))
	assert.NotEqual(t, a, record.MintIdentifier("43", "activity", 0))
}

func TestMintIdentifierIsUUID(t *testing.T) {
	id := record.MintIdentifier("seed", "person", 7)
	assert.Len(t, id.String(), 36)
	assert.Equal(t, byte('-'), id.String()[8])
}

func TestRuleSetDirectiveDefault(t *testing.T) {
	rs := &record.RuleSet{
		Directives: map[string]record.Directive{
			"keyword": record.DirectiveUnion,
		},
	}
	assert.Equal(t, record.DirectiveUnion, rs.Directive("keyword"))
	assert.Equal(t, record.DirectivePriority, rs.Directive("title"))
}

func TestEnvelopeValidate(t *testing.T) {
	extracted := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
	}

	t.Run("valid extracted", func(t *testing.T) {
		assert.NoError(t, record.NewExtracted(extracted).Validate())
	})

	t.Run("kind payload mismatch", func(t *testing.T) {
		bad := record.Envelope{Kind: record.KindMerged, EntityType: "resource", Extracted: extracted}
		assert.Error(t, bad.Validate())
	})

	t.Run("double payload", func(t *testing.T) {
		bad := record.NewExtracted(extracted)
		bad.Merged = &record.MergedRecord{}
		assert.Error(t, bad.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		bad := record.Envelope{Kind: "draft"}
		assert.Error(t, bad.Validate())
	})
}

func TestEnvelopeIdentifier(t *testing.T) {
	rs := &record.RuleSet{Identifier: "id-9", EntityType: "activity"}
	assert.Equal(t, record.Identifier("id-9"), record.NewRuleSet(rs).Identifier())
}

func TestMarshalLineIsStable(t *testing.T) {
	extracted := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "source-2",
		Synthetic:  true,
		Scalars: map[string][]any{
			"title":   {"Surveillance Report"},
			"keyword": {"cohort", "register"},
		},
		References: map[string][]record.Identifier{
			"unitInCharge": {"id-0"},
		},
	}

	first, err := record.NewExtracted(extracted).MarshalLine()
	require.NoError(t, err)

	for range 20 {
		again, err := record.NewExtracted(extracted).MarshalLine()
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	// one self-contained object per line
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Equal(t, "extracted", decoded["kind"])
	assert.Equal(t, "resource", decoded["entityType"])
	assert.NotContains(t, string(first), "\n")
}
