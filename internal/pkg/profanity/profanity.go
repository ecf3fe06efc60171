// Package profanity masks blocked words in free text.
package profanity

import (
	_ "embed"
	"strings"
	"unicode"

	"storefront-core/internal/pkg/errs"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed words.yaml
var defaultWords []byte

const mask = '*'

var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'@': 'a',
	'$': 's',
}

type wordList struct {
	Words []string `yaml:"words"`
}

type Filter struct {
	blocked map[string]struct{}
}

func New(words []string) *Filter {
	blocked := make(map[string]struct{}, len(words))
	for _, w := range words {
		if k := normalize(strings.TrimSpace(w)); k != "" {
			blocked[k] = struct{}{}
		}
	}
	return &Filter{blocked: blocked}
}

// Parse reads a YAML document of the form `words: [...]`.
func Parse(doc []byte) (*Filter, error) {
	var list wordList
	if err := yaml.Unmarshal(doc, &list); err != nil {
		return nil, errs.Wrap(err, "parse profanity word list")
	}
	return New(list.Words), nil
}

func Default() (*Filter, error) {
	return Parse(defaultWords)
}

// Clean replaces each blocked word with asterisks of the same rune length.
// Everything between words is kept as written.
func (f *Filter) Clean(text string) string {
	if len(f.blocked) == 0 || text == "" {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		if _, hit := f.blocked[normalize(string(word))]; hit {
			out.WriteString(strings.Repeat(string(mask), len(word)))
		} else {
			out.WriteString(string(word))
		}
		word = word[:0]
	}

	for _, r := range text {
		if isWordRune(r) {
			word = append(word, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()

	return out.String()
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
		return true
	}
	_, ok := leet[r]
	return ok
}

// normalize folds case, strips diacritics and undoes digit substitutions.
// Casers and transformers are stateful, so each call builds its own.
func normalize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)

	return strings.Map(func(r rune) rune {
		if sub, ok := leet[r]; ok {
			return sub
		}
		return r
	}, folded)
}
