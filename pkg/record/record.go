// Package record defines the objects the engine emits: extracted records,
// their paired rule sets, merged records, and the envelope that frames them
// for line-delimited output.
package record

// ExtractedRecord is a single synthetic observation of one entity, as if
// sourced from one origin system. Scalar and reference values are kept as
// lists regardless of cardinality; single-valued fields hold one element.
type ExtractedRecord struct {
	Identifier Identifier `json:"identifier"`
	EntityType string     `json:"entityType"`

	// Source names the simulated origin system this observation came from.
	Source string `json:"source"`

	// Synthetic marks the record as artificially generated.
	Synthetic bool `json:"synthetic"`

	Scalars    map[string][]any        `json:"scalars"`
	References map[string][]Identifier `json:"references"`
}

// Directive tells the merge engine how to resolve one field across the
// constituents of an identity cluster.
type Directive string

// Supported merge directives.
const (
	// DirectivePriority picks the first non-absent value walking the rule
	// set's source priority order.
	DirectivePriority Directive = "priority"

	// DirectiveUnion concatenates all constituents' values, removing
	// duplicates while preserving first-seen order.
	DirectiveUnion Directive = "union"
)

// RuleSet holds the per-field merge directives for one identity cluster.
// It is generated alongside the cluster's first extracted record, so merge
// behavior is defined before any merge occurs.
type RuleSet struct {
	Identifier Identifier `json:"identifier"`
	EntityType string     `json:"entityType"`

	// SourcePriority orders the simulated origin systems from most to
	// least authoritative for DirectivePriority resolution.
	SourcePriority []string `json:"sourcePriority"`

	Directives map[string]Directive `json:"directives"`
}

// Directive returns the directive for a field, defaulting to priority.
func (rs *RuleSet) Directive(field string) Directive {
	if d, ok := rs.Directives[field]; ok {
		return d
	}
	return DirectivePriority
}

// MergedRecord is the consolidated record for one identity: every field is
// the rule-set resolved combination of its constituents' values.
type MergedRecord struct {
	Identifier Identifier `json:"identifier"`
	EntityType string     `json:"entityType"`
	Synthetic  bool       `json:"synthetic"`

	Scalars    map[string][]any        `json:"scalars"`
	References map[string][]Identifier `json:"references"`
}
