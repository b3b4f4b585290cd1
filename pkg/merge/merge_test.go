package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/merge"
	"github.com/fixgen/fixgen/pkg/record"
)

func singleSourceRuleSet(id record.Identifier, entityType string) *record.RuleSet {
	return &record.RuleSet{
		Identifier:     id,
		EntityType:     entityType,
		SourcePriority: []string{"system-1"},
		Directives:     map[string]record.Directive{},
	}
}

func TestMergeIdempotence(t *testing.T) {
	rec := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "system-1",
		Synthetic:  true,
		Scalars: map[string][]any{
			"title":   {"Kohorte Studie"},
			"keyword": {"register", "labor"},
		},
		References: map[string][]record.Identifier{
			"unitInCharge": {"unit-1", "unit-2"},
		},
	}

	engine := merge.New()
	engine.Observe(rec)
	engine.Register(singleSourceRuleSet("id-1", "resource"))

	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 1)

	got := merged[0]
	assert.Equal(t, rec.Identifier, got.Identifier)
	assert.Equal(t, rec.EntityType, got.EntityType)
	assert.True(t, got.Synthetic)
	assert.Equal(t, rec.Scalars, got.Scalars)
	assert.Equal(t, rec.References, got.References)
}

func TestMergePriorityPick(t *testing.T) {
	first := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "system-2",
		Scalars:    map[string][]any{"title": {"from system two"}},
	}
	second := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "system-1",
		Scalars: map[string][]any{
			"title": {"from system one"},
			"doi":   {"10.0000/xyz"},
		},
	}

	engine := merge.New()
	engine.Observe(first)
	engine.Observe(second)
	engine.Register(&record.RuleSet{
		Identifier:     "id-1",
		EntityType:     "resource",
		SourcePriority: []string{"system-1", "system-2"},
		Directives: map[string]record.Directive{
			"title": record.DirectivePriority,
			"doi":   record.DirectivePriority,
		},
	})

	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 1)

	// system-1 outranks system-2, and absent values fall through
	assert.Equal(t, []any{"from system one"}, merged[0].Scalars["title"])
	assert.Equal(t, []any{"10.0000/xyz"}, merged[0].Scalars["doi"])
}

func TestMergeUnionDeduplicates(t *testing.T) {
	first := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "system-1",
		Scalars:    map[string][]any{"keyword": {"labor", "register"}},
		References: map[string][]record.Identifier{"contributor": {"p-1", "p-2"}},
	}
	second := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "resource",
		Source:     "system-2",
		Scalars:    map[string][]any{"keyword": {"register", "kohorte"}},
		References: map[string][]record.Identifier{"contributor": {"p-2", "p-3"}},
	}

	engine := merge.New()
	engine.Observe(first)
	engine.Observe(second)
	engine.Register(&record.RuleSet{
		Identifier:     "id-1",
		EntityType:     "resource",
		SourcePriority: []string{"system-2", "system-1"},
		Directives: map[string]record.Directive{
			"keyword":     record.DirectiveUnion,
			"contributor": record.DirectiveUnion,
		},
	})

	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 1)

	// union keeps first-seen (observation) order and drops duplicates
	assert.Equal(t, []any{"labor", "register", "kohorte"}, merged[0].Scalars["keyword"])
	assert.Equal(t, []record.Identifier{"p-1", "p-2", "p-3"}, merged[0].References["contributor"])
}

func TestMergeNoFieldInvented(t *testing.T) {
	rec := &record.ExtractedRecord{
		Identifier: "id-1",
		EntityType: "person",
		Source:     "system-1",
		Scalars:    map[string][]any{"fullName": {"someone"}},
	}

	engine := merge.New()
	engine.Observe(rec)
	rs := singleSourceRuleSet("id-1", "person")
	rs.Directives["email"] = record.DirectiveUnion // directive for an absent field
	engine.Register(rs)

	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.NotContains(t, merged[0].Scalars, "email")
	assert.Len(t, merged[0].Scalars, 1)
}

func TestMergeMissingRuleSetIsFatal(t *testing.T) {
	engine := merge.New()
	engine.Observe(&record.ExtractedRecord{Identifier: "id-1", EntityType: "person", Source: "system-1"})

	_, err := engine.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingRuleSet)
	assert.Contains(t, err.Error(), "id-1")
}

func TestMergeFlushOrderAndReset(t *testing.T) {
	engine := merge.New()
	for _, id := range []record.Identifier{"b-2", "a-1", "c-3"} {
		engine.Observe(&record.ExtractedRecord{Identifier: id, EntityType: "person", Source: "system-1",
			Scalars: map[string][]any{"fullName": {string(id)}}})
		engine.Register(singleSourceRuleSet(id, "person"))
	}
	assert.Equal(t, 3, engine.Pending())

	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, record.Identifier("b-2"), merged[0].Identifier)
	assert.Equal(t, record.Identifier("a-1"), merged[1].Identifier)
	assert.Equal(t, record.Identifier("c-3"), merged[2].Identifier)

	assert.Equal(t, 0, engine.Pending())
	again, err := engine.Flush()
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMergeRuleSetWithoutRecordsIsSkipped(t *testing.T) {
	engine := merge.New()
	engine.Register(singleSourceRuleSet("id-1", "person"))

	merged, err := engine.Flush()
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestMergeRuleSetsSurviveFlush(t *testing.T) {
	engine := merge.New()
	engine.Register(singleSourceRuleSet("id-1", "person"))

	engine.Observe(&record.ExtractedRecord{Identifier: "id-1", EntityType: "person", Source: "system-1",
		Scalars: map[string][]any{"fullName": {"first observation"}}})
	_, err := engine.Flush()
	require.NoError(t, err)

	// a late constituent after a flush boundary still finds its rules
	engine.Observe(&record.ExtractedRecord{Identifier: "id-1", EntityType: "person", Source: "system-1",
		Scalars: map[string][]any{"fullName": {"late observation"}}})
	merged, err := engine.Flush()
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, []any{"late observation"}, merged[0].Scalars["fullName"])
}
