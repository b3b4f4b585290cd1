package generate

import (
	"fmt"
	"strings"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/randsrc"
	"github.com/fixgen/fixgen/pkg/schema"
)

// presenceProbability is the chance an optional field is filled at all.
const presenceProbability = 0.5

// listCountWeights is the distribution of item counts for list-cardinality
// fields, carried over from the original generator's tuning.
var listCountWeights = []randsrc.WeightedChoice{
	{Value: 1, Weight: 0.42},
	{Value: 2, Weight: 0.28},
	{Value: 3, Weight: 0.16},
	{Value: 4, Weight: 0.08},
	{Value: 5, Weight: 0.04},
	{Value: 10, Weight: 0.02},
}

// datePrecisions are the renderable layouts for date fields.
var datePrecisions = []string{"2006", "2006-01", "2006-01-02"}

// linkDomains are the hosts synthetic links point at.
var linkDomains = []string{"example.org", "example.net", "example.com"}

// fieldFactory fills one scalar field of one record. Word counts scale with
// the run's chattiness; everything else follows the field's schema metadata.
type fieldFactory struct {
	chattiness int
	lang       string
}

func newFieldFactory(ctx *Context) *fieldFactory {
	return &fieldFactory{
		chattiness: ctx.Chattiness(),
		lang:       ctx.Lang(),
	}
}

// present decides whether an optional field appears on this record.
// Required fields are always present.
func (ff *fieldFactory) present(st *randsrc.Stream, f schema.Field) bool {
	if !f.Optional {
		return true
	}
	return st.Chance(presenceProbability)
}

// itemCount draws how many values a present field receives.
func (ff *fieldFactory) itemCount(st *randsrc.Stream, f schema.Field) int {
	if !f.Many {
		return 1
	}
	return st.PickWeighted(listCountWeights)
}

// Values fills one scalar field: a presence draw for optional fields, then
// a count draw, then that many independent values, de-duplicated while
// preserving first-seen order. Absent fields return (nil, false).
func (ff *fieldFactory) Values(st *randsrc.Stream, f schema.Field) ([]any, bool, error) {
	if !ff.present(st, f) {
		return nil, false, nil
	}

	count := ff.itemCount(st, f)
	values := make([]any, 0, count)
	seen := make(map[string]bool, count)
	for range count {
		value, err := ff.value(st, f)
		if err != nil {
			return nil, false, err
		}
		key := fmt.Sprint(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, value)
	}
	return values, true, nil
}

// value draws one type-appropriate value for the field.
func (ff *fieldFactory) value(st *randsrc.Stream, f schema.Field) (any, error) {
	switch f.Kind {
	case schema.KindString:
		return ff.shortText(st), nil
	case schema.KindText:
		return ff.textBlock(st), nil
	case schema.KindEnum:
		return st.PickString(f.Values), nil
	case schema.KindInteger:
		return st.IntBetween(0, 9999), nil
	case schema.KindDate:
		return ff.date(st, f), nil
	case schema.KindLink:
		return ff.link(st), nil
	default:
		// reference fields are filled from the identifier pool, and
		// unsupported kinds are rejected at registry load
		return nil, errors.NewConfigError("generate",
			fmt.Sprintf("field kind %q has no value factory", f.Kind), nil)
	}
}

// shortText is a small run of words, for name- and label-like fields.
func (ff *fieldFactory) shortText(st *randsrc.Stream) string {
	maxWords := ff.chattiness / 5
	if maxWords < 3 {
		maxWords = 3
	}
	return st.Words(st.IntBetween(1, maxWords))
}

// textBlock is a paragraph of 1..chattiness sentences.
func (ff *fieldFactory) textBlock(st *randsrc.Stream) string {
	sentences := st.IntBetween(1, ff.chattiness)
	parts := make([]string, sentences)
	for i := range parts {
		parts[i] = st.Sentence(8)
	}
	return strings.Join(parts, " ")
}

// date renders a date within the schema's year range at a drawn precision.
func (ff *fieldFactory) date(st *randsrc.Stream, f schema.Field) string {
	year := st.IntBetween(f.MinYear, f.MaxYear)
	month := st.IntBetween(1, 12)
	day := st.IntBetween(1, 28)
	layout := randsrc.Pick(st, datePrecisions)
	switch layout {
	case "2006":
		return fmt.Sprintf("%04d", year)
	case "2006-01":
		return fmt.Sprintf("%04d-%02d", year, month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
}

// link builds a synthetic URL with optional title and language.
func (ff *fieldFactory) link(st *randsrc.Stream) map[string]any {
	out := map[string]any{
		"url": fmt.Sprintf("https://%s/%s", randsrc.Pick(st, linkDomains), st.Word()),
	}
	if st.Chance(0.5) {
		out["title"] = st.Words(st.IntBetween(1, 3))
		if st.Chance(0.5) {
			out["language"] = ff.lang
		}
	}
	return out
}
