package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ToJSON serializes a document result to pretty JSON.
func ToJSON(res *DocumentResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText renders the extracted fields as "Key: Value" lines in sorted
// key order, followed by the document confidence.
func ToPlainText(res *DocumentResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	keys := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, res.Fields[k])
	}
	fmt.Fprintf(&sb, "\nDocument confidence: %.2f\n", res.Confidence)
	return sb.String(), nil
}

// ToCSV exports per-field structured data as CSV with header.
func ToCSV(res *DocumentResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	keys := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"field", "value", "confidence", "source"})
	for _, k := range keys {
		meta := res.Metadata[k]
		row := []string{
			k,
			res.Fields[k],
			fmt.Sprintf("%.2f", meta.Confidence),
			meta.Source,
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String(), w.Error()
}
