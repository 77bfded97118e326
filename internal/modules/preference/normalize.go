package preference

import "strings"

// Normalize lower-cases and trims an utterance. Extraction rules match
// against this form only; no tokenization or stemming happens here.
func Normalize(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}
