package randsrc

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fixgen/fixgen/internal/embedded"
	"github.com/fixgen/fixgen/pkg/errors"
)

// supported lists the locales with an embedded wordlist, in matcher order.
var supported = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(supported)

// WordTable holds the vocabulary for one locale.
type WordTable struct {
	lang  string
	words []string
	title cases.Caser
}

// LoadWords resolves a BCP 47 locale tag against the embedded wordlists and
// loads the matching vocabulary. An unparseable or unsupported locale is a
// configuration error.
func LoadWords(locale string) (*WordTable, error) {
	// accept POSIX-style tags like "de_DE" alongside BCP 47 "de-DE"
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return nil, errors.NewConfigError("locale",
			fmt.Sprintf("cannot parse locale %q", locale), err)
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return nil, errors.NewConfigError("locale",
			fmt.Sprintf("unsupported locale %q", locale), nil)
	}
	matched := supported[index]
	base, _ := matched.Base()

	data, err := embedded.FS.ReadFile(embedded.WordlistPath(base.String()))
	if err != nil {
		return nil, errors.NewConfigError("locale",
			fmt.Sprintf("wordlist for %q missing from embedded assets", base.String()), err)
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if word := strings.TrimSpace(line); word != "" {
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return nil, errors.NewConfigError("locale",
			fmt.Sprintf("wordlist for %q is empty", base.String()), nil)
	}

	return &WordTable{
		lang:  base.String(),
		words: words,
		title: cases.Title(matched),
	}, nil
}

// Lang returns the resolved base language code, e.g. "de".
func (w *WordTable) Lang() string {
	return w.lang
}

// Len returns the vocabulary size.
func (w *WordTable) Len() int {
	return len(w.words)
}

// At returns the word at the given index.
func (w *WordTable) At(i int) string {
	return w.words[i]
}

// Title capitalizes a word according to the table's locale.
func (w *WordTable) Title(word string) string {
	return w.title.String(word)
}
