package util

import "strings"

// TruncateBytes trims a string to maxBytes if needed.
func TruncateBytes(input string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(input) <= maxBytes {
		return input, false
	}
	return input[:maxBytes], true
}

// Preview returns a single-line preview of text limited to maxBytes,
// suitable for event payloads and logs.
func Preview(text string, maxBytes int) string {
	if text == "" {
		return ""
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	out, truncated := TruncateBytes(text, maxBytes)
	if truncated {
		out += "..."
	}
	return out
}
