// Package stream orchestrates a generation run: which entity types produce,
// in what order, and whether production is bounded or unbounded. It is the
// only component aware of the overall run configuration.
package stream

import (
	"context"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/generate"
	"github.com/fixgen/fixgen/pkg/logging"
	"github.com/fixgen/fixgen/pkg/merge"
	"github.com/fixgen/fixgen/pkg/record"
	"github.com/fixgen/fixgen/pkg/schema"
)

// Controller drives the per-type generators round-robin in dependency
// order, pairs every new identity cluster with a rule set, and hands
// buffered clusters to the merge engine.
//
// The controller is a pull-based iterator: nothing is computed until Next
// is called. It is not safe for concurrent use.
type Controller struct {
	ctx    *generate.Context
	order  []string
	gens   map[string]*generate.Generator
	rules  map[string]*generate.Rules
	merger *merge.Engine

	seen    map[record.Identifier]bool
	emitted map[string]int

	queue   []record.Envelope
	cursor  int
	flushed bool
}

// New validates the run configuration against the registry and builds the
// controller. The generation order is a fixed topological pass over the
// registry's required-reference graph, computed once here.
func New(genCtx *generate.Context) (*Controller, error) {
	order, err := schema.Order(genCtx.Registry(), genCtx.Types())
	if err != nil {
		return nil, err
	}

	pool := generate.NewPool(order)
	gens := make(map[string]*generate.Generator, len(order))
	rules := make(map[string]*generate.Rules, len(order))
	for _, name := range order {
		entityType, _ := genCtx.Registry().Type(name)
		gens[name] = generate.NewGenerator(genCtx, entityType, pool)
		rules[name] = generate.NewRules(genCtx, entityType)
	}

	return &Controller{
		ctx:     genCtx,
		order:   order,
		gens:    gens,
		rules:   rules,
		merger:  merge.New(),
		seen:    make(map[record.Identifier]bool),
		emitted: make(map[string]int, len(order)),
	}, nil
}

// Order returns the resolved generation order of entity types.
func (c *Controller) Order() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Next yields the next envelope in ingestion order: extracted records and
// their rule sets while types still produce, then—in bounded mode—the
// merged records of the final flush. ErrExhausted marks the end of a
// bounded stream; unbounded streams never return it.
func (c *Controller) Next() (record.Envelope, error) {
	if len(c.queue) > 0 {
		return c.pop(), nil
	}

	name, ok := c.nextProducer()
	if !ok {
		// bounded mode: all types have reached their count
		if !c.flushed {
			if err := c.flushMergedIntoQueue(); err != nil {
				return record.Envelope{}, err
			}
			if len(c.queue) > 0 {
				return c.pop(), nil
			}
		}
		return record.Envelope{}, errors.ErrExhausted
	}

	rec, err := c.gens[name].Next()
	if err != nil {
		return record.Envelope{}, err
	}
	c.emitted[name]++
	c.merger.Observe(rec)

	c.queue = append(c.queue, record.NewExtracted(rec))
	if !c.seen[rec.Identifier] {
		c.seen[rec.Identifier] = true
		rs := c.rules[name].ForCluster(rec)
		c.merger.Register(rs)
		c.queue = append(c.queue, record.NewRuleSet(rs))
	}
	return c.pop(), nil
}

// nextProducer advances the round-robin cursor to the next type that still
// has records to produce. In unbounded mode every type always produces.
func (c *Controller) nextProducer() (string, bool) {
	if c.ctx.Unbounded() {
		name := c.order[c.cursor]
		c.cursor = (c.cursor + 1) % len(c.order)
		return name, true
	}

	for range len(c.order) {
		name := c.order[c.cursor]
		c.cursor = (c.cursor + 1) % len(c.order)
		if c.emitted[name] < c.ctx.Count() {
			return name, true
		}
	}
	return "", false
}

// pop removes and returns the head of the pending envelope queue.
func (c *Controller) pop() record.Envelope {
	env := c.queue[0]
	c.queue = c.queue[1:]
	return env
}

// flushMergedIntoQueue folds all buffered clusters and queues the merged
// records for emission.
func (c *Controller) flushMergedIntoQueue() error {
	c.flushed = true
	merged, err := c.merger.Flush()
	if err != nil {
		return err
	}
	for _, m := range merged {
		c.queue = append(c.queue, record.NewMerged(m))
	}
	return nil
}

// FlushMerged folds the clusters buffered so far and returns their merged
// records. In unbounded mode this is the caller-specified flush boundary;
// the controller never guesses when a cluster is complete.
func (c *Controller) FlushMerged() ([]record.Envelope, error) {
	merged, err := c.merger.Flush()
	if err != nil {
		return nil, err
	}
	out := make([]record.Envelope, len(merged))
	for i, m := range merged {
		out[i] = record.NewMerged(m)
	}
	// identities flushed once do not open new clusters again
	return out, nil
}

// Run drives a bounded stream to completion, passing every envelope to
// emit in ingestion order. The context cancels between pulls; generation
// holds no external resources, so stopping is just not pulling again.
func (c *Controller) Run(ctx context.Context, emit func(record.Envelope) error) error {
	if c.ctx.Unbounded() {
		return errors.NewConfigError("stream", "Run requires a bounded context; pull Next directly for unbounded production", nil)
	}

	log := logging.FromContext(ctx)
	log.Info().
		Str("seed", c.ctx.Seed()).
		Str("locale", c.ctx.Locale()).
		Int("count", c.ctx.Count()).
		Strs("order", c.order).
		Msg("starting generation run")

	produced := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, err := c.Next()
		if err != nil {
			if errors.IsExhausted(err) {
				log.Info().Int("records", produced).Msg("generation run complete")
				return nil
			}
			return err
		}
		if err := emit(env); err != nil {
			return err
		}
		produced++
	}
}
