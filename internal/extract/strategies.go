package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// minValueLength is the minimum surviving length for pattern-extracted
// values after allow-list stripping.
const minValueLength = 2

// maxCustomKeyLength bounds ad-hoc field keys discovered during line parsing.
const maxCustomKeyLength = 40

// matchFullText runs each field's ordered patterns against the whole
// recognized text blob; the first capturing-group match wins.
func matchFullText(in input, res *resolutions) {
	matchPatterns(in, res, StageFullText, []string{in.blob})
}

// matchFragments runs the same patterns against each region's own text,
// catching values that blob concatenation order would misalign.
func matchFragments(in input, res *resolutions) {
	texts := make([]string, 0, len(in.regions))
	for _, r := range in.regions {
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	matchPatterns(in, res, StageFragment, texts)
}

func matchPatterns(in input, res *resolutions, stage Stage, texts []string) {
	for _, f := range in.schema.Fields() {
		if res.has(f.Key) {
			continue
		}
	patterns:
		for _, re := range f.Patterns() {
			for _, text := range texts {
				m := re.FindStringSubmatch(text)
				if len(m) < 2 {
					continue
				}
				v := in.schema.StripValue(m[1])
				if utf8.RuneCountInString(v) < minValueLength {
					continue
				}
				res.add(f.Key, v, stage)
				break patterns
			}
		}
	}
}

// matchLines parses every line containing a ':' as a key/value pair. Keys
// unmatched by the synonym table become title-cased custom fields rather
// than being dropped.
func matchLines(in input, res *resolutions) {
	caser := cases.Title(in.schema.Tag())
	for _, line := range in.lines {
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}

		if canonical, ok := in.schema.Canonicalize(key); ok {
			res.add(canonical, value, StageLineParse)
			continue
		}
		custom := customKey(key, caser)
		if custom == "" {
			continue
		}
		res.add(custom, value, StageLineParse)
	}
}

func customKey(key string, caser cases.Caser) string {
	key = strings.Join(strings.Fields(key), " ")
	if utf8.RuneCountInString(key) > maxCustomKeyLength {
		return ""
	}
	hasLetter := false
	for _, r := range key {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return ""
	}
	return caser.String(strings.ToLower(key))
}

// maxFuzzyPrefixWords bounds how many leading words of a line are tried as a
// label during the fuzzy-line fallback.
const maxFuzzyPrefixWords = 4

// matchFuzzyLines is the last-resort stage: for fields still unresolved it
// scans lines without a ':' separator and fuzzy-matches their leading words
// against the synonym table.
func matchFuzzyLines(in input, res *resolutions) {
	for _, line := range in.lines {
		if strings.Contains(line, ":") {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}
		limit := maxFuzzyPrefixWords
		if len(words)-1 < limit {
			limit = len(words) - 1
		}
		for n := 1; n <= limit; n++ {
			prefix := strings.Join(words[:n], " ")
			canonical, ok := in.schema.Canonicalize(prefix)
			if !ok || res.has(canonical) {
				continue
			}
			value := strings.TrimSpace(strings.Join(words[n:], " "))
			if utf8.RuneCountInString(value) < minValueLength {
				continue
			}
			res.add(canonical, value, StageFuzzyLine)
			break
		}
	}
}
