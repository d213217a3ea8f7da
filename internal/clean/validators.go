package clean

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Phone numbers reduce to 8-15 digits; exactly 12 or 16 digits are the
// reserved national-ID/voucher-ID lengths and indicate mis-classification.
const (
	phoneMinDigits = 8
	phoneMaxDigits = 15
)

var reservedIDLengths = map[int]bool{12: true, 16: true}

// defaultNameMinLength applies when the schema does not override it.
const defaultNameMinLength = 3

var (
	garbagePattern  = regexp.MustCompile(`^[^\w\s]{1,3}$`)
	questionPattern = regexp.MustCompile(`^\?+$`)
	phoneSeparators = regexp.MustCompile(`[\s\-().+]`)
	datePattern     = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2/1/06",
}

// isGarbage rejects pure-punctuation noise shapes.
func isGarbage(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	return garbagePattern.MatchString(v) || questionPattern.MatchString(v)
}

func validPhone(value string) bool {
	digits := phoneSeparators.ReplaceAllString(value, "")
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	n := len(digits)
	if reservedIDLengths[n] {
		return false
	}
	return n >= phoneMinDigits && n <= phoneMaxDigits
}

func validDate(value string) bool {
	v := strings.TrimSpace(value)
	if !datePattern.MatchString(v) {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func validEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

func (c *Cleaner) validName(value string, minLen int) bool {
	if minLen <= 0 {
		minLen = defaultNameMinLength
	}
	v := strings.TrimSpace(value)
	if utf8.RuneCountInString(v) < minLen {
		return false
	}
	hasLetter := false
	for _, r := range v {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if !hasLetter {
		return false
	}
	words := " " + strings.Join(strings.Fields(strings.Map(lowerLetters, v)), " ") + " "
	for _, token := range c.schema.InstitutionalVocabulary() {
		// Whole-word match only: "Indian" must survive an "india" token.
		if strings.Contains(words, " "+token+" ") {
			return false
		}
	}
	return true
}

func lowerLetters(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return unicode.ToLower(r)
	}
	return ' '
}

// cleanAddress strips leaked label text from the value's prefix and drops
// the field when the remainder is too short.
func (c *Cleaner) cleanAddress(key, value string, minLen int) (string, bool) {
	if minLen <= 0 {
		minLen = 3
	}
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	for _, syn := range c.schema.SynonymsFor(key) {
		if strings.HasPrefix(lower, syn) {
			v = strings.TrimSpace(strings.TrimLeft(v[len(syn):], ":.- "))
			break
		}
	}
	if utf8.RuneCountInString(v) < minLen {
		return "", false
	}
	return v, true
}
