package record

import (
	"encoding/json"

	"github.com/fixgen/fixgen/pkg/errors"
)

// Kind discriminates the payload carried by an Envelope.
type Kind string

// Envelope payload kinds.
const (
	KindExtracted Kind = "extracted"
	KindRuleSet   Kind = "ruleset"
	KindMerged    Kind = "merged"
)

// Envelope frames one emitted object as a self-contained line of output.
// Exactly one payload field is set, matching Kind.
type Envelope struct {
	Kind       Kind   `json:"kind"`
	EntityType string `json:"entityType"`

	Extracted *ExtractedRecord `json:"extracted,omitempty"`
	RuleSet   *RuleSet         `json:"ruleSet,omitempty"`
	Merged    *MergedRecord    `json:"merged,omitempty"`
}

// NewExtracted wraps an extracted record for emission.
func NewExtracted(r *ExtractedRecord) Envelope {
	return Envelope{Kind: KindExtracted, EntityType: r.EntityType, Extracted: r}
}

// NewRuleSet wraps a rule set for emission.
func NewRuleSet(rs *RuleSet) Envelope {
	return Envelope{Kind: KindRuleSet, EntityType: rs.EntityType, RuleSet: rs}
}

// NewMerged wraps a merged record for emission.
func NewMerged(m *MergedRecord) Envelope {
	return Envelope{Kind: KindMerged, EntityType: m.EntityType, Merged: m}
}

// Identifier returns the identifier of whichever payload is set.
func (e Envelope) Identifier() Identifier {
	switch e.Kind {
	case KindExtracted:
		return e.Extracted.Identifier
	case KindRuleSet:
		return e.RuleSet.Identifier
	case KindMerged:
		return e.Merged.Identifier
	default:
		return ""
	}
}

// Validate checks that the envelope carries exactly the payload its kind
// announces.
func (e Envelope) Validate() error {
	switch e.Kind {
	case KindExtracted:
		if e.Extracted == nil || e.RuleSet != nil || e.Merged != nil {
			return errors.NewValidationError("kind", e.Kind, "extracted envelope must carry exactly an extracted record")
		}
	case KindRuleSet:
		if e.RuleSet == nil || e.Extracted != nil || e.Merged != nil {
			return errors.NewValidationError("kind", e.Kind, "ruleset envelope must carry exactly a rule set")
		}
	case KindMerged:
		if e.Merged == nil || e.Extracted != nil || e.RuleSet != nil {
			return errors.NewValidationError("kind", e.Kind, "merged envelope must carry exactly a merged record")
		}
	default:
		return errors.NewValidationError("kind", e.Kind, "unknown envelope kind")
	}
	return nil
}

// MarshalLine renders the envelope as one JSON line without trailing newline.
// Map-valued fields marshal with sorted keys, so output is byte-stable.
func (e Envelope) MarshalLine() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}
