package generate

import (
	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/randsrc"
	"github.com/fixgen/fixgen/pkg/record"
)

// Pool tracks the identifiers already emitted per entity type and exposes
// them for reference sampling. It is append-only: identifiers are published
// on emission and never removed, which is what makes backward references
// safe under lazy production.
type Pool struct {
	ids map[string][]record.Identifier
}

// NewPool creates an empty pool for the given entity types.
func NewPool(types []string) *Pool {
	ids := make(map[string][]record.Identifier, len(types))
	for _, t := range types {
		ids[t] = nil
	}
	return &Pool{ids: ids}
}

// Publish records an identifier as available for future reference sampling.
func (p *Pool) Publish(entityType string, id record.Identifier) {
	p.ids[entityType] = append(p.ids[entityType], id)
}

// Published returns how many identifiers of a type have been published.
func (p *Pool) Published(entityType string) int {
	return len(p.ids[entityType])
}

// SampleReferences returns up to count identifiers uniformly sampled from
// all published identifiers of the target types, without repeats. Target
// types absent from the pool contribute no candidates.
//
// With no candidates at all, an empty result is returned when allowEmpty is
// set; otherwise ErrDepleted signals that the caller would have had to
// fabricate a forward reference.
func (p *Pool) SampleReferences(st *randsrc.Stream, targets []string, count int, allowEmpty bool) ([]record.Identifier, error) {
	var candidates []record.Identifier
	for _, target := range targets {
		candidates = append(candidates, p.ids[target]...)
	}

	if len(candidates) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, errors.ErrDepleted
	}

	indices := st.SampleIndices(len(candidates), count)
	out := make([]record.Identifier, len(indices))
	for i, idx := range indices {
		out[i] = candidates[idx]
	}
	return out, nil
}
