package catalog

import (
	"fmt"
	"sort"
	"strings"

	"fleet-maintenance-backend/internal/parse"
)

// DefaultSynonyms maps a phrase to the operation it designates.
var DefaultSynonyms = map[string]string{
	"liquide refroidissement": CircuitTightness,
}

type synonym struct {
	phrase string
	words  []string
	op     OperationType
}

type candidate struct {
	op    OperationType
	words []string
}

// Matcher recognizes operations in free-text descriptions.
type Matcher struct {
	synonyms   []synonym
	candidates []candidate
}

// NewMatcher builds a matcher from the default synonyms plus extra ones.
// Extra synonyms override defaults with the same phrase.
func NewMatcher(extra map[string]string) (*Matcher, error) {
	phrases := make(map[string]string, len(DefaultSynonyms)+len(extra))
	for p, code := range DefaultSynonyms {
		phrases[p] = code
	}
	for p, code := range extra {
		phrases[p] = code
	}

	m := &Matcher{}
	for phrase, code := range phrases {
		op, ok := ByCode(code)
		if !ok {
			return nil, fmt.Errorf("synonym %q maps to unknown operation %q", phrase, code)
		}
		words := parse.Words(phrase)
		if len(words) == 0 {
			continue
		}
		m.synonyms = append(m.synonyms, synonym{phrase: phrase, words: words, op: op})
	}
	// Longer synonyms first so that the most specific phrase wins; then by
	// phrase for a stable order across runs.
	sort.Slice(m.synonyms, func(i, j int) bool {
		if len(m.synonyms[i].words) != len(m.synonyms[j].words) {
			return len(m.synonyms[i].words) > len(m.synonyms[j].words)
		}
		return m.synonyms[i].phrase < m.synonyms[j].phrase
	})

	for _, op := range operations {
		if op.SynonymOnly {
			continue
		}
		if words := parse.Words(op.Label); len(words) > 0 {
			m.candidates = append(m.candidates, candidate{op: op, words: words})
		}
	}
	sort.SliceStable(m.candidates, func(i, j int) bool {
		a, b := m.candidates[i], m.candidates[j]
		if len(a.words) != len(b.words) {
			return len(a.words) > len(b.words)
		}
		return len(a.op.Label) > len(b.op.Label)
	})
	return m, nil
}

// Match returns the operation designated by text. A false result means the
// text names no known operation; it is not an error.
func (m *Matcher) Match(text string) (OperationType, bool) {
	key := parse.Normalize(text)
	if key == "" {
		return OperationType{}, false
	}
	for _, s := range m.synonyms {
		if containsAll(key, s.words) {
			return s.op, true
		}
	}
	for _, c := range m.candidates {
		if containsAll(key, c.words) {
			return c.op, true
		}
	}
	return OperationType{}, false
}

func containsAll(key string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(key, w) {
			return false
		}
	}
	return true
}
