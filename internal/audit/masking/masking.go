// Package masking redacts customer identifiers before they are stored in
// audit metadata.
package masking

import "strings"

const maskToken = "****"

// MaskIdentity keeps the last four characters of a personal identity number,
// e.g. "19800101-1234" becomes "****1234".
func MaskIdentity(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskFields returns a copy of input with the named keys masked. Nested maps
// are masked with the same key set.
func MaskFields(input map[string]any, keys ...string) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		switch cast := value.(type) {
		case map[string]any:
			masked[trimmedKey] = MaskFields(cast, keys...)
		case string:
			if contains(keys, trimmedKey) {
				masked[trimmedKey] = MaskIdentity(cast)
			} else {
				masked[trimmedKey] = cast
			}
		default:
			masked[trimmedKey] = value
		}
	}
	return masked
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
