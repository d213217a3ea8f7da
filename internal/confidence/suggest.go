package confidence

// maxSuggestions caps the number of alternative readings proposed for a
// low-confidence text.
const maxSuggestions = 3

// confusables maps characters to their visually confusable alternatives in
// typical OCR output.
var confusables = map[rune][]rune{
	'0': {'O'},
	'O': {'0'},
	'1': {'I', 'l'},
	'I': {'1', 'l'},
	'l': {'1', 'I'},
	'5': {'S'},
	'S': {'5'},
	'8': {'B'},
	'B': {'8'},
	'2': {'Z'},
	'Z': {'2'},
}

// Suggest proposes up to three alternative readings for a low-confidence
// text by substituting visually confusable characters one position at a
// time. Returns nil when the confidence is at or above the threshold.
func Suggest(text string, combined float64) []string {
	if combined >= SuggestionThreshold || text == "" {
		return nil
	}

	seen := map[string]bool{text: true}
	var out []string
	runes := []rune(text)
	for i, r := range runes {
		alts, ok := confusables[r]
		if !ok {
			continue
		}
		for _, alt := range alts {
			candidate := make([]rune, len(runes))
			copy(candidate, runes)
			candidate[i] = alt
			s := string(candidate)
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			if len(out) == maxSuggestions {
				return out
			}
		}
	}
	return out
}
