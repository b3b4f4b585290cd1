package generate

import (
	stderrors "errors"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/randsrc"
	"github.com/fixgen/fixgen/pkg/record"
	"github.com/fixgen/fixgen/pkg/schema"
)

// observationGrowth is the chance an identity gains one more simulated
// observation, up to the context's source cap. Biased toward single
// observations so most clusters merge trivially.
const observationGrowth = 0.35

// Generator produces the lazy, unbounded record sequence for one entity
// type. Each step mints the next identifier, fills scalar fields through
// the field factory, fills reference fields from already-published
// identifiers, publishes the new identifier, and yields the record.
//
// A generator is pull-based and not mid-stream resumable: restarting means
// constructing a fresh generator from the same context.
type Generator struct {
	ctx        *Context
	entityType schema.EntityType
	pool       *Pool
	stream     *randsrc.Stream
	factory    *fieldFactory

	ordinal int
	pending []*record.ExtractedRecord
}

// NewGenerator creates the generator for one entity type, sampling
// references from the shared pool.
func NewGenerator(ctx *Context, entityType schema.EntityType, pool *Pool) *Generator {
	return &Generator{
		ctx:        ctx,
		entityType: entityType,
		pool:       pool,
		stream:     ctx.Stream(entityType.Name),
		factory:    newFieldFactory(ctx),
	}
}

// EntityType returns the type this generator produces.
func (g *Generator) EntityType() string {
	return g.entityType.Name
}

// Next produces the next extracted record. Identities observed by several
// simulated origin systems yield one record per observation, consecutively,
// all sharing the identity's identifier.
func (g *Generator) Next() (*record.ExtractedRecord, error) {
	if len(g.pending) > 0 {
		next := g.pending[0]
		g.pending = g.pending[1:]
		return next, nil
	}

	id := record.MintIdentifier(g.ctx.Seed(), g.entityType.Name, g.ordinal)
	g.ordinal++

	sources := g.observers()
	records := make([]*record.ExtractedRecord, len(sources))
	for i, source := range sources {
		rec, err := g.fill(id, source)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	// publish once per identity so reference sampling stays uniform over
	// identities, and only after sampling so no record references itself
	g.pool.Publish(g.entityType.Name, id)

	g.pending = records[1:]
	return records[0], nil
}

// observers draws which simulated origin systems see this identity.
func (g *Generator) observers() []string {
	all := g.ctx.Sources()
	if len(all) == 1 {
		return all
	}

	count := 1
	for count < len(all) && g.stream.Chance(observationGrowth) {
		count++
	}

	indices := g.stream.SampleIndices(len(all), count)
	picked := make([]string, len(indices))
	for i, idx := range indices {
		picked[i] = all[idx]
	}
	return picked
}

// fill synthesizes one observation of the identity, walking the fields in
// schema order so the draw sequence is stable.
func (g *Generator) fill(id record.Identifier, source string) (*record.ExtractedRecord, error) {
	scalars := make(map[string][]any)
	references := make(map[string][]record.Identifier)

	for _, field := range g.entityType.Fields {
		if field.IsReference() {
			if !g.factory.present(g.stream, field) {
				continue
			}
			count := g.factory.itemCount(g.stream, field)
			ids, err := g.pool.SampleReferences(g.stream, field.Targets, count, field.Optional)
			if err != nil {
				if stderrors.Is(err, errors.ErrDepleted) {
					return nil, errors.NewDepletionError(g.entityType.Name, field.Name, field.Targets)
				}
				return nil, err
			}
			if len(ids) > 0 {
				references[field.Name] = ids
			}
			continue
		}

		values, present, err := g.factory.Values(g.stream, field)
		if err != nil {
			return nil, err
		}
		if present && len(values) > 0 {
			scalars[field.Name] = values
		}
	}

	return &record.ExtractedRecord{
		Identifier: id,
		EntityType: g.entityType.Name,
		Source:     source,
		Synthetic:  true,
		Scalars:    scalars,
		References: references,
	}, nil
}

// Rules is the rule-set generator paired with one entity type's output.
// It emits one rule set per identity cluster, at the cluster's first
// constituent, so no merge ever lacks a rule.
type Rules struct {
	entityType schema.EntityType
	stream     *randsrc.Stream
	sources    []string
}

// directive biases, per cardinality: union is only well-defined by default
// for list fields, priority-pick for single-valued ones.
const (
	unionBiasMany   = 0.80
	unionBiasSingle = 0.15
)

// NewRules creates the rule-set generator for one entity type. It draws
// from its own salted sub-stream so rule sets stay reproducible regardless
// of record interleaving.
func NewRules(ctx *Context, entityType schema.EntityType) *Rules {
	return &Rules{
		entityType: entityType,
		stream:     ctx.Stream(entityType.Name + "#rules"),
		sources:    ctx.Sources(),
	}
}

// ForCluster emits the rule set for the identity cluster opened by the
// given first constituent. Every schema field receives a directive, present
// on the record or not, so merge behavior is fully defined up front.
func (r *Rules) ForCluster(first *record.ExtractedRecord) *record.RuleSet {
	directives := make(map[string]record.Directive, len(r.entityType.Fields))
	for _, field := range r.entityType.Fields {
		bias := unionBiasSingle
		if field.Many {
			bias = unionBiasMany
		}
		if r.stream.Chance(bias) {
			directives[field.Name] = record.DirectiveUnion
		} else {
			directives[field.Name] = record.DirectivePriority
		}
	}

	return &record.RuleSet{
		Identifier:     first.Identifier,
		EntityType:     r.entityType.Name,
		SourcePriority: randsrc.Shuffle(r.stream, r.sources),
		Directives:     directives,
	}
}
