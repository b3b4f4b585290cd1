// Package randsrc provides the deterministic pseudo-random primitives behind
// every generated value. A Source is keyed by the run's master seed; each
// entity type draws from its own salted sub-stream, so a type's value
// sequence is reproducible regardless of how types are interleaved.
package randsrc

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

// Source derives independent deterministic sub-streams from a master seed.
type Source struct {
	seed  string
	words *WordTable
}

// New creates a Source for the given master seed and word table.
func New(seed string, words *WordTable) *Source {
	return &Source{seed: seed, words: words}
}

// Seed returns the master seed the source was built from.
func (s *Source) Seed() string {
	return s.seed
}

// Stream returns the sub-stream for the given salt. Equal (seed, salt)
// pairs always yield streams producing identical draw sequences.
func (s *Source) Stream(salt string) *Stream {
	hi := foldSeed(s.seed, salt, 0x9e3779b97f4a7c15)
	lo := foldSeed(s.seed, salt, 0xc2b2ae3d27d4eb4f)
	return &Stream{
		rng:   rand.New(rand.NewPCG(hi, lo)),
		words: s.words,
	}
}

// foldSeed hashes seed and salt into one PCG state word.
func foldSeed(seed, salt string, mix uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(salt))
	return h.Sum64() ^ mix
}

// Stream is one deterministic draw sequence. Streams are not safe for
// concurrent use; each entity type owns its own.
type Stream struct {
	rng   *rand.Rand
	words *WordTable
}

// IntBetween returns a uniform integer in [low, high], inclusive.
func (st *Stream) IntBetween(low, high int) int {
	if high <= low {
		return low
	}
	return low + st.rng.IntN(high-low+1)
}

// Index returns a uniform index in [0, n).
func (st *Stream) Index(n int) int {
	return st.rng.IntN(n)
}

// Float returns a uniform float in [0, 1).
func (st *Stream) Float() float64 {
	return st.rng.Float64()
}

// Chance returns true with probability p.
func (st *Stream) Chance(p float64) bool {
	return st.rng.Float64() < p
}

// PickString returns a uniform choice from the given values.
func (st *Stream) PickString(values []string) string {
	return values[st.rng.IntN(len(values))]
}

// Pick returns a uniform choice from the given values.
func Pick[T any](st *Stream, values []T) T {
	return values[st.rng.IntN(len(values))]
}

// WeightedChoice is one option of a weighted draw.
type WeightedChoice struct {
	Value  int
	Weight float64
}

// PickWeighted draws one value according to the choices' weights.
// Choices are consumed in the order given, keeping the draw deterministic.
func (st *Stream) PickWeighted(choices []WeightedChoice) int {
	var total float64
	for _, c := range choices {
		total += c.Weight
	}
	target := st.rng.Float64() * total
	for _, c := range choices {
		target -= c.Weight
		if target < 0 {
			return c.Value
		}
	}
	return choices[len(choices)-1].Value
}

// SampleIndices returns k distinct indices drawn from [0, n), in draw order.
// If k >= n, all n indices are returned in a shuffled order.
func (st *Stream) SampleIndices(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	// partial Fisher-Yates over an index permutation
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	out := make([]int, k)
	for i := range k {
		j := i + st.rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
		out[i] = perm[i]
	}
	return out
}

// Shuffle returns a shuffled copy of the given values.
func Shuffle[T any](st *Stream, values []T) []T {
	out := make([]T, len(values))
	copy(out, values)
	st.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Word returns one word from the locale word table.
func (st *Stream) Word() string {
	return st.words.At(st.rng.IntN(st.words.Len()))
}

// Words returns n words joined by spaces.
func (st *Stream) Words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = st.Word()
	}
	return strings.Join(parts, " ")
}

// Sentence returns a capitalized sentence of 1..maxWords words.
func (st *Stream) Sentence(maxWords int) string {
	n := st.IntBetween(1, maxWords)
	sentence := st.words.Title(st.Word())
	for range n - 1 {
		sentence += " " + st.Word()
	}
	return sentence + "."
}
