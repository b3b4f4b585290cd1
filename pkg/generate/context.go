// Package generate produces synthetic extracted records and their paired
// rule sets. All value synthesis is driven by a GenerationContext: the same
// context always reproduces the same records, byte for byte.
package generate

import (
	"fmt"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/randsrc"
	"github.com/fixgen/fixgen/pkg/schema"
)

// Defaults mirroring the generate command's flag defaults.
const (
	DefaultSeed       = "0"
	DefaultLocale     = "de"
	DefaultChattiness = 10
	DefaultSources    = 1
)

// Context carries the immutable configuration of one generation run and the
// seeded value source derived from it. It owns no mutable state itself.
type Context struct {
	seed       string
	locale     string
	chattiness int
	types      []string
	count      int
	sources    []string

	registry *schema.Registry
	source   *randsrc.Source
	words    *randsrc.WordTable
}

// contextOptions collects the configurable knobs of a run.
type contextOptions struct {
	seed       string
	locale     string
	chattiness int
	types      []string
	count      int
	maxSources int
}

// Option configures a generation context.
type Option func(*contextOptions)

// WithSeed sets the reproducibility key of the run.
func WithSeed(seed string) Option {
	return func(o *contextOptions) { o.seed = seed }
}

// WithLocale sets the locale for textual field content.
func WithLocale(locale string) Option {
	return func(o *contextOptions) { o.locale = locale }
}

// WithChattiness scales the word count of generated textual fields.
func WithChattiness(chattiness int) Option {
	return func(o *contextOptions) { o.chattiness = chattiness }
}

// WithTypes restricts generation to a subset of the registry's entity types.
// An empty list means all types.
func WithTypes(types ...string) Option {
	return func(o *contextOptions) { o.types = types }
}

// WithCount sets the number of extracted records per entity type.
// Zero means unbounded production.
func WithCount(count int) Option {
	return func(o *contextOptions) { o.count = count }
}

// WithMaxSources caps how many simulated origin systems may observe the
// same identity. With the default of 1 every identity cluster has a single
// constituent; higher values let the merge engine fold real conflicts.
func WithMaxSources(n int) Option {
	return func(o *contextOptions) { o.maxSources = n }
}

// NewContext validates the configuration and builds the run context.
// All configuration errors surface here, before any record is produced.
func NewContext(registry *schema.Registry, opts ...Option) (*Context, error) {
	if registry == nil {
		return nil, errors.NewConfigError("generate", "no schema registry supplied", nil)
	}

	options := &contextOptions{
		seed:       DefaultSeed,
		locale:     DefaultLocale,
		chattiness: DefaultChattiness,
		maxSources: DefaultSources,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.chattiness < 1 {
		return nil, errors.NewConfigError("generate",
			fmt.Sprintf("chattiness must be positive, got %d", options.chattiness), nil)
	}
	if options.count < 0 {
		return nil, errors.NewConfigError("generate",
			fmt.Sprintf("count must be non-negative, got %d", options.count), nil)
	}
	if options.maxSources < 1 {
		return nil, errors.NewConfigError("generate",
			fmt.Sprintf("sources per identity must be positive, got %d", options.maxSources), nil)
	}

	types := options.types
	if len(types) == 0 {
		types = registry.Names()
	}
	for _, name := range types {
		if !registry.Has(name) {
			return nil, errors.NewConfigError("generate",
				fmt.Sprintf("unknown entity type %q in allowlist", name), nil)
		}
	}

	words, err := randsrc.LoadWords(options.locale)
	if err != nil {
		return nil, err
	}

	sources := make([]string, options.maxSources)
	for i := range sources {
		sources[i] = fmt.Sprintf("system-%d", i+1)
	}

	return &Context{
		seed:       options.seed,
		locale:     options.locale,
		chattiness: options.chattiness,
		types:      types,
		count:      options.count,
		sources:    sources,
		registry:   registry,
		source:     randsrc.New(options.seed, words),
		words:      words,
	}, nil
}

// Seed returns the run's reproducibility key.
func (c *Context) Seed() string { return c.seed }

// Locale returns the requested locale tag.
func (c *Context) Locale() string { return c.locale }

// Chattiness returns the textual verbosity level.
func (c *Context) Chattiness() int { return c.chattiness }

// Types returns the entity types scheduled for generation.
func (c *Context) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}

// Count returns the per-type record count; zero means unbounded.
func (c *Context) Count() int { return c.count }

// Unbounded reports whether the run produces indefinitely.
func (c *Context) Unbounded() bool { return c.count == 0 }

// Sources returns the simulated origin system names, most sources first.
func (c *Context) Sources() []string {
	out := make([]string, len(c.sources))
	copy(out, c.sources)
	return out
}

// Registry returns the schema registry collaborator.
func (c *Context) Registry() *schema.Registry { return c.registry }

// Stream returns the deterministic sub-stream for the given salt.
func (c *Context) Stream(salt string) *randsrc.Stream {
	return c.source.Stream(salt)
}

// Lang returns the resolved base language code of the run's locale.
func (c *Context) Lang() string { return c.words.Lang() }
