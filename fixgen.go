// Package fixgen generates deterministic synthetic catalog metadata:
// extracted records, the rule sets that govern how observations of one
// identity merge, and the merged records themselves. The same seed always
// reproduces the same stream, byte for byte.
//
// The root package is a thin facade over pkg/schema, pkg/generate,
// pkg/merge, and pkg/stream; use those directly for finer control.
package fixgen

import (
	"context"

	"github.com/fixgen/fixgen/pkg/generate"
	"github.com/fixgen/fixgen/pkg/record"
	"github.com/fixgen/fixgen/pkg/schema"
	"github.com/fixgen/fixgen/pkg/stream"
)

// config collects the facade's settings before the run context is built.
type config struct {
	registry     *schema.Registry
	registryFile string
	genOpts      []generate.Option
}

// Option is a function that configures a generation run.
type Option func(*config) error

// WithRegistry uses the given schema registry instead of the builtin one.
func WithRegistry(registry *schema.Registry) Option {
	return func(c *config) error {
		c.registry = registry
		return nil
	}
}

// WithRegistryFile loads the schema registry from a YAML file.
func WithRegistryFile(path string) Option {
	return func(c *config) error {
		c.registryFile = path
		return nil
	}
}

// WithSeed sets the reproducibility key of the run.
func WithSeed(seed string) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithSeed(seed))
		return nil
	}
}

// WithLocale sets the locale for textual field content.
func WithLocale(locale string) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithLocale(locale))
		return nil
	}
}

// WithChattiness scales the word count of generated textual fields.
func WithChattiness(chattiness int) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithChattiness(chattiness))
		return nil
	}
}

// WithCount sets the number of extracted records per entity type.
// Zero means unbounded production.
func WithCount(count int) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithCount(count))
		return nil
	}
}

// WithTypes restricts generation to a subset of the registry's entity types.
func WithTypes(types ...string) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithTypes(types...))
		return nil
	}
}

// WithMaxSources caps how many simulated origin systems may observe the
// same identity.
func WithMaxSources(n int) Option {
	return func(c *config) error {
		c.genOpts = append(c.genOpts, generate.WithMaxSources(n))
		return nil
	}
}

// Stream builds a pull-based record stream from the given options. Without
// WithCount production is unbounded: callers pull envelopes via Next and
// choose their own flush boundaries with FlushMerged.
func Stream(opts ...Option) (*stream.Controller, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	registry := cfg.registry
	var err error
	switch {
	case registry != nil:
	case cfg.registryFile != "":
		registry, err = schema.LoadFile(cfg.registryFile)
	default:
		registry, err = schema.Builtin()
	}
	if err != nil {
		return nil, err
	}

	genCtx, err := generate.NewContext(registry, cfg.genOpts...)
	if err != nil {
		return nil, err
	}
	return stream.New(genCtx)
}

// Generate runs a bounded stream to completion and returns every envelope
// in ingestion order: extracted records with their rule sets, then the
// merged records. WithCount is required; unbounded runs must use Stream.
func Generate(ctx context.Context, opts ...Option) ([]record.Envelope, error) {
	ctrl, err := Stream(opts...)
	if err != nil {
		return nil, err
	}

	var out []record.Envelope
	if err := ctrl.Run(ctx, func(env record.Envelope) error {
		out = append(out, env)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
