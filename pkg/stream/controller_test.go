package stream_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/generate"
	"github.com/fixgen/fixgen/pkg/record"
	"github.com/fixgen/fixgen/pkg/schema"
	"github.com/fixgen/fixgen/pkg/stream"
)

func newController(t *testing.T, opts ...generate.Option) *stream.Controller {
	t.Helper()
	reg, err := schema.Builtin()
	require.NoError(t, err)
	genCtx, err := generate.NewContext(reg, opts...)
	require.NoError(t, err)
	ctrl, err := stream.New(genCtx)
	require.NoError(t, err)
	return ctrl
}

// drain pulls a bounded controller to exhaustion and returns every envelope.
func drain(t *testing.T, ctrl *stream.Controller) []record.Envelope {
	t.Helper()
	var out []record.Envelope
	for {
		env, err := ctrl.Next()
		if errors.IsExhausted(err) {
			return out
		}
		require.NoError(t, err)
		out = append(out, env)
	}
}

func TestControllerBoundedRun(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("42"),
		generate.WithLocale("de"),
		generate.WithChattiness(1),
		generate.WithCount(5),
		generate.WithTypes("activity", "resource"),
	)
	assert.Equal(t, []string{"activity", "resource"}, ctrl.Order())

	envelopes := drain(t, ctrl)

	counts := map[record.Kind]int{}
	perType := map[string]int{}
	for _, env := range envelopes {
		counts[env.Kind]++
		if env.Kind == record.KindExtracted {
			perType[env.EntityType]++
		}
	}
	assert.Equal(t, 10, counts[record.KindExtracted])
	assert.Equal(t, 10, counts[record.KindRuleSet])
	assert.Equal(t, 10, counts[record.KindMerged])
	assert.Equal(t, 5, perType["activity"])
	assert.Equal(t, 5, perType["resource"])
}

func TestControllerPairsRuleSetWithFirstObservation(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("42"),
		generate.WithCount(4),
		generate.WithTypes("activity", "resource"),
	)

	envelopes := drain(t, ctrl)

	ruled := map[record.Identifier]bool{}
	for i, env := range envelopes {
		switch env.Kind {
		case record.KindExtracted:
			if !ruled[env.Identifier()] {
				// first sight: the very next envelope must be its rule set
				require.Less(t, i+1, len(envelopes))
				next := envelopes[i+1]
				assert.Equal(t, record.KindRuleSet, next.Kind)
				assert.Equal(t, env.Identifier(), next.Identifier())
			}
		case record.KindRuleSet:
			assert.False(t, ruled[env.Identifier()], "rule set emitted twice for %s", env.Identifier())
			ruled[env.Identifier()] = true
		}
	}
}

func TestControllerReferentialIntegrity(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("7"),
		generate.WithCount(8),
	)

	published := map[record.Identifier]bool{}
	for _, env := range drain(t, ctrl) {
		if env.Kind != record.KindExtracted {
			continue
		}
		for field, ids := range env.Extracted.References {
			for _, id := range ids {
				assert.True(t, published[id],
					"%s.%s refers to an identifier not yet in the stream", env.EntityType, field)
			}
		}
		published[env.Extracted.Identifier] = true
	}
}

func TestControllerByteStableReplay(t *testing.T) {
	run := func() []string {
		ctrl := newController(t,
			generate.WithSeed("42"),
			generate.WithLocale("de"),
			generate.WithChattiness(1),
			generate.WithCount(5),
			generate.WithTypes("activity", "resource"),
		)
		var lines []string
		for _, env := range drain(t, ctrl) {
			line, err := env.MarshalLine()
			require.NoError(t, err)
			lines = append(lines, string(line))
		}
		return lines
	}

	assert.Equal(t, run(), run(), "identical configuration must replay byte for byte")
}

func TestControllerSeedChangesOutput(t *testing.T) {
	lines := func(seed string) []string {
		ctrl := newController(t,
			generate.WithSeed(seed),
			generate.WithCount(2),
			generate.WithTypes("activity", "resource"),
		)
		var out []string
		for _, env := range drain(t, ctrl) {
			line, err := env.MarshalLine()
			require.NoError(t, err)
			out = append(out, string(line))
		}
		return out
	}

	assert.NotEqual(t, lines("42"), lines("43"))
}

func TestControllerUnboundedPrefixMatchesBounded(t *testing.T) {
	bounded := newController(t,
		generate.WithSeed("42"),
		generate.WithCount(3),
		generate.WithTypes("activity", "resource"),
	)
	unbounded := newController(t,
		generate.WithSeed("42"),
		generate.WithTypes("activity", "resource"),
	)

	var prefix []record.Envelope
	for _, env := range drain(t, bounded) {
		if env.Kind == record.KindMerged {
			break
		}
		prefix = append(prefix, env)
	}
	require.NotEmpty(t, prefix)

	for i, want := range prefix {
		got, err := unbounded.Next()
		require.NoError(t, err)
		wantLine, err := want.MarshalLine()
		require.NoError(t, err)
		gotLine, err := got.MarshalLine()
		require.NoError(t, err)
		assert.Equal(t, string(wantLine), string(gotLine), "envelope %d diverges", i)
	}
}

func TestControllerUnboundedFlush(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("9"),
		generate.WithTypes("activity", "resource"),
	)

	seen := map[record.Identifier]bool{}
	for range 12 {
		env, err := ctrl.Next()
		require.NoError(t, err)
		if env.Kind == record.KindExtracted {
			seen[env.Identifier()] = true
		}
	}

	merged, err := ctrl.FlushMerged()
	require.NoError(t, err)
	require.Len(t, merged, len(seen))
	for _, env := range merged {
		assert.Equal(t, record.KindMerged, env.Kind)
		assert.True(t, seen[env.Identifier()])
	}

	// the flush boundary resets buffered clusters, production continues
	env, err := ctrl.Next()
	require.NoError(t, err)
	assert.Equal(t, record.KindExtracted, env.Kind)
}

func TestControllerExhaustionIsSticky(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("1"),
		generate.WithCount(1),
		generate.WithTypes("activity"),
	)

	drain(t, ctrl)
	for range 3 {
		_, err := ctrl.Next()
		assert.ErrorIs(t, err, errors.ErrExhausted)
	}
}

func TestControllerRun(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("42"),
		generate.WithCount(2),
		generate.WithTypes("activity", "resource"),
	)

	var kinds []record.Kind
	err := ctrl.Run(context.Background(), func(env record.Envelope) error {
		kinds = append(kinds, env.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, kinds, 12) // 4 extracted, 4 rule sets, 4 merged
	assert.Equal(t, record.KindMerged, kinds[len(kinds)-1])
}

func TestControllerRunRejectsUnbounded(t *testing.T) {
	ctrl := newController(t, generate.WithTypes("activity"))

	err := ctrl.Run(context.Background(), func(record.Envelope) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestControllerRunHonorsCancellation(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("42"),
		generate.WithCount(50),
	)

	ctx, cancel := context.WithCancel(context.Background())
	pulled := 0
	err := ctrl.Run(ctx, func(record.Envelope) error {
		pulled++
		if pulled == 5 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, pulled)
}

func TestControllerMultiSourceClusters(t *testing.T) {
	ctrl := newController(t,
		generate.WithSeed("13"),
		generate.WithCount(30),
		generate.WithTypes("organization"),
		generate.WithMaxSources(3),
	)

	observations := map[record.Identifier]int{}
	mergedSeen := 0
	for _, env := range drain(t, ctrl) {
		switch env.Kind {
		case record.KindExtracted:
			observations[env.Identifier()]++
		case record.KindMerged:
			mergedSeen++
			assert.LessOrEqual(t, observations[env.Identifier()], 3)
		}
	}
	assert.Equal(t, len(observations), mergedSeen, "one merged record per identity cluster")

	multi := 0
	for _, n := range observations {
		if n > 1 {
			multi++
		}
	}
	assert.Greater(t, multi, 0, "expected conflicting observations to merge")
}
