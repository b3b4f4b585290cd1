// Package merge folds extracted records sharing an identity into one
// consolidated record per identity, following the cluster's rule set.
// No field value is ever invented here: every merged value is traceable to
// a constituent.
package merge

import (
	"fmt"
	"sort"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/record"
)

// cluster buffers the observations of one identity until flush.
type cluster struct {
	entityType string
	records    []*record.ExtractedRecord
	rules      *record.RuleSet
}

// Engine groups buffered extracted records by identity and applies the
// matching rule set at flush time. Merging is deferred to an explicit
// Flush so the caller decides when a cluster is complete: at stream end
// for bounded runs, at a chosen boundary for unbounded ones.
//
// Registered rule sets outlive flushes: a constituent observed after a
// flush boundary still finds its cluster's rules.
type Engine struct {
	rules    map[record.Identifier]*record.RuleSet
	clusters map[record.Identifier]*cluster
	order    []record.Identifier
}

// New creates an empty merge engine.
func New() *Engine {
	return &Engine{
		rules:    make(map[record.Identifier]*record.RuleSet),
		clusters: make(map[record.Identifier]*cluster),
	}
}

// Observe buffers one extracted record under its identity.
func (e *Engine) Observe(rec *record.ExtractedRecord) {
	c, ok := e.clusters[rec.Identifier]
	if !ok {
		c = &cluster{entityType: rec.EntityType}
		e.clusters[rec.Identifier] = c
		e.order = append(e.order, rec.Identifier)
	}
	c.records = append(c.records, rec)
}

// Register attaches a rule set to its identity. Rule sets may arrive
// before or after the cluster's constituents.
func (e *Engine) Register(rs *record.RuleSet) {
	e.rules[rs.Identifier] = rs
}

// Pending returns how many identity clusters are buffered.
func (e *Engine) Pending() int {
	return len(e.clusters)
}

// Flush merges every buffered cluster and clears the record buffer.
// Results come back in first-observed identity order. A cluster with
// observations but no rule set is an internal invariant violation and
// fails the flush.
func (e *Engine) Flush() ([]*record.MergedRecord, error) {
	merged := make([]*record.MergedRecord, 0, len(e.clusters))
	for _, id := range e.order {
		c := e.clusters[id]
		c.rules = e.rules[id]
		if c.rules == nil {
			return nil, errors.NewMergeError(c.entityType, id.String(),
				"identity cluster has no rule set at flush", errors.ErrMissingRuleSet)
		}
		merged = append(merged, mergeCluster(id, c))
	}

	e.clusters = make(map[record.Identifier]*cluster)
	e.order = nil
	return merged, nil
}

// mergeCluster resolves every field of one identity cluster.
func mergeCluster(id record.Identifier, c *cluster) *record.MergedRecord {
	byPriority := orderByPriority(c.records, c.rules.SourcePriority)

	out := &record.MergedRecord{
		Identifier: id,
		EntityType: c.entityType,
		Synthetic:  true,
		Scalars:    make(map[string][]any),
		References: make(map[string][]record.Identifier),
	}

	for _, field := range fieldNames(c.records) {
		switch c.rules.Directive(field) {
		case record.DirectiveUnion:
			if values := unionScalars(c.records, field); len(values) > 0 {
				out.Scalars[field] = values
			}
			if ids := unionReferences(c.records, field); len(ids) > 0 {
				out.References[field] = ids
			}
		default: // record.DirectivePriority
			for _, rec := range byPriority {
				if values, ok := rec.Scalars[field]; ok && len(values) > 0 {
					out.Scalars[field] = append([]any(nil), values...)
					break
				}
				if ids, ok := rec.References[field]; ok && len(ids) > 0 {
					out.References[field] = append([]record.Identifier(nil), ids...)
					break
				}
			}
		}
	}
	return out
}

// orderByPriority sorts constituents by the rule set's source priority,
// keeping observation order among sources the rule set does not name.
func orderByPriority(records []*record.ExtractedRecord, priority []string) []*record.ExtractedRecord {
	rank := make(map[string]int, len(priority))
	for i, source := range priority {
		rank[source] = i
	}
	unranked := len(priority)

	out := append([]*record.ExtractedRecord(nil), records...)
	// insertion sort: cluster sizes are tiny and stability matters
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			ra, ok := rank[a.Source]
			if !ok {
				ra = unranked
			}
			rb, ok := rank[b.Source]
			if !ok {
				rb = unranked
			}
			if rb < ra {
				out[j-1], out[j] = out[j], out[j-1]
			} else {
				break
			}
		}
	}
	return out
}

// fieldNames collects every field present on any constituent, in
// first-seen order across observation order.
func fieldNames(records []*record.ExtractedRecord) []string {
	var names []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, field := range orderedKeys(rec.Scalars) {
			if !seen[field] {
				seen[field] = true
				names = append(names, field)
			}
		}
		for _, field := range orderedKeys(rec.References) {
			if !seen[field] {
				seen[field] = true
				names = append(names, field)
			}
		}
	}
	return names
}

// orderedKeys returns a map's keys sorted, keeping iteration deterministic.
func orderedKeys[V any](m map[string][]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unionScalars concatenates all constituents' scalar values for a field,
// de-duplicated, first-seen order preserved.
func unionScalars(records []*record.ExtractedRecord, field string) []any {
	var out []any
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, value := range rec.Scalars[field] {
			key := fmt.Sprint(value)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, value)
		}
	}
	return out
}

// unionReferences concatenates all constituents' reference values for a
// field, de-duplicated, first-seen order preserved.
func unionReferences(records []*record.ExtractedRecord, field string) []record.Identifier {
	var out []record.Identifier
	seen := make(map[record.Identifier]bool)
	for _, rec := range records {
		for _, id := range rec.References[field] {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
