package schema

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"golang.org/x/text/language"
)

// MinFuzzyScore is the minimum normalized similarity for a fuzzy synonym
// match. Empirical tuning knob preserved as a compatibility surface.
const MinFuzzyScore = 0.7

// minSubstringLen guards the substring match against trivially short
// synonyms matching everywhere.
const minSubstringLen = 3

// FieldKind selects the field-specific validator applied by the cleaning
// layer.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindName    FieldKind = "name"
	KindDate    FieldKind = "date"
	KindPhone   FieldKind = "phone"
	KindEmail   FieldKind = "email"
	KindAddress FieldKind = "address"
	KindID      FieldKind = "id"
)

// Field describes one canonical field: its key, accepted synonym spellings
// and the ordered extraction patterns for the schema's language.
type Field struct {
	Key       string
	Kind      FieldKind
	Synonyms  []string
	MinLength int
	patterns  []*regexp.Regexp
}

// Patterns returns the field's compiled extraction patterns in table order.
func (f *Field) Patterns() []*regexp.Regexp { return f.patterns }

// Schema is the language-scoped single source of truth for canonical field
// names and accepted synonym spellings. It is immutable once loaded and
// swapped wholesale on language change.
type Schema struct {
	lang      string
	tag       language.Tag
	fields    []Field
	byKey     map[string]*Field
	bySynonym map[string]string
	allow     *regexp.Regexp
	vocab     []string
}

// Language returns the schema's language code (e.g. "en").
func (s *Schema) Language() string { return s.lang }

// Tag returns the parsed language tag used for casing rules.
func (s *Schema) Tag() language.Tag { return s.tag }

// Fields returns the canonical fields in table order.
func (s *Schema) Fields() []Field { return s.fields }

// Field looks up a canonical field by key.
func (s *Schema) Field(key string) (*Field, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// SynonymsFor returns the accepted synonym spellings for a canonical field.
func (s *Schema) SynonymsFor(key string) []string {
	if f, ok := s.byKey[key]; ok {
		return f.Synonyms
	}
	return nil
}

// InstitutionalVocabulary returns header/institution tokens whose presence
// disqualifies a value as a person name.
func (s *Schema) InstitutionalVocabulary() []string { return s.vocab }

// NormalizeToken lowercases a token and strips surrounding whitespace and a
// trailing label separator.
func NormalizeToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimRight(t, ":.- ")
	return strings.Join(strings.Fields(t), " ")
}

// Canonicalize resolves a free-form token to a canonical field key.
// Matching is attempted in order: exact synonym, longest synonym contained
// in the token, then fuzzy similarity with the MinFuzzyScore cutoff.
func (s *Schema) Canonicalize(token string) (string, bool) {
	t := NormalizeToken(token)
	if t == "" {
		return "", false
	}

	if key, ok := s.bySynonym[t]; ok {
		return key, ok
	}

	if key, ok := s.longestSubstring(t); ok {
		return key, ok
	}

	return s.fuzzy(t)
}

func (s *Schema) longestSubstring(token string) (string, bool) {
	bestKey := ""
	bestLen := 0
	for _, f := range s.fields {
		for _, syn := range f.Synonyms {
			if len(syn) < minSubstringLen || len(syn) <= bestLen {
				continue
			}
			if strings.Contains(token, syn) {
				bestKey = f.Key
				bestLen = len(syn)
			}
		}
	}
	return bestKey, bestLen > 0
}

var fuzzyParams = levenshtein.NewParams()

func (s *Schema) fuzzy(token string) (string, bool) {
	bestKey := ""
	bestScore := 0.0
	for _, f := range s.fields {
		for _, syn := range f.Synonyms {
			score := levenshtein.Similarity(token, syn, fuzzyParams)
			if score > bestScore {
				bestKey = f.Key
				bestScore = score
			}
		}
	}
	if bestScore >= MinFuzzyScore {
		return bestKey, true
	}
	return "", false
}

// IsLabel reports whether the text reads as a field label: an exact synonym
// match or a short prefix extension of one (e.g. "name:" for "name").
// Returns the matched canonical key.
func (s *Schema) IsLabel(text string) (string, bool) {
	t := NormalizeToken(text)
	if t == "" {
		return "", false
	}
	if key, ok := s.bySynonym[t]; ok {
		return key, true
	}
	bestKey := ""
	bestLen := 0
	for _, f := range s.fields {
		for _, syn := range f.Synonyms {
			if len(syn) <= bestLen {
				continue
			}
			if strings.HasPrefix(t, syn) && len(t)-len(syn) <= labelPrefixSlack {
				bestKey = f.Key
				bestLen = len(syn)
			}
		}
	}
	return bestKey, bestLen > 0
}

// labelPrefixSlack bounds how many extra characters a label region may carry
// beyond the synonym itself (separators, stray OCR characters).
const labelPrefixSlack = 3

// StripValue removes characters outside the language's allow-list from an
// extracted value and collapses the remaining whitespace.
func (s *Schema) StripValue(v string) string {
	v = s.allow.ReplaceAllString(v, "")
	return strings.Join(strings.Fields(v), " ")
}

// TrimTrailingSynonym removes a trailing synonym of any field other than
// exclude when the remainder stays non-trivial. This undoes fragment
// concatenation artifacts like "John SmithAge".
func (s *Schema) TrimTrailingSynonym(value, exclude string) string {
	lower := strings.ToLower(value)
	for _, f := range s.fields {
		if f.Key == exclude {
			continue
		}
		for _, syn := range f.Synonyms {
			if len(syn) < minSubstringLen || !strings.HasSuffix(lower, syn) {
				continue
			}
			rest := strings.TrimSpace(value[:len(value)-len(syn)])
			if utf8.RuneCountInString(rest) > 2 {
				return rest
			}
		}
	}
	return value
}

func buildSchema(def *tableDef) (*Schema, error) {
	tag, err := language.Parse(def.Language)
	if err != nil {
		tag = language.Und
	}

	s := &Schema{
		lang:      def.Language,
		tag:       tag,
		byKey:     make(map[string]*Field),
		bySynonym: make(map[string]string),
		vocab:     def.Institutional,
	}

	for _, fd := range def.Fields {
		f := Field{
			Key:       fd.Key,
			Kind:      FieldKind(fd.Kind),
			MinLength: fd.MinLength,
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		for _, syn := range fd.Synonyms {
			f.Synonyms = append(f.Synonyms, NormalizeToken(syn))
		}
		// Longest synonyms first so substring matches prefer specificity.
		sort.SliceStable(f.Synonyms, func(i, j int) bool {
			return len(f.Synonyms[i]) > len(f.Synonyms[j])
		})
		for _, pat := range fd.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, err
			}
			f.patterns = append(f.patterns, re)
		}
		s.fields = append(s.fields, f)
	}
	for i := range s.fields {
		f := &s.fields[i]
		s.byKey[f.Key] = f
		for _, syn := range f.Synonyms {
			if _, taken := s.bySynonym[syn]; !taken {
				s.bySynonym[syn] = f.Key
			}
		}
	}

	allow := `[^\w@./\- `
	if def.Script != "" {
		allow += `\p{` + def.Script + `}`
	}
	allow += `]`
	re, err := regexp.Compile(allow)
	if err != nil {
		return nil, err
	}
	s.allow = re
	return s, nil
}
