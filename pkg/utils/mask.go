package utils

import "strings"

// MaskRecipient hides the middle of a phone number or chat id for log output,
// keeping the first five and last three characters.
func MaskRecipient(recipient string) string {
	r := []rune(strings.TrimSpace(recipient))
	if len(r) <= 8 {
		return "***"
	}
	return string(r[:5]) + "***" + string(r[len(r)-3:])
}

// Preview returns at most n runes of s, with an ellipsis when truncated
func Preview(s string, n int) string {
	runes := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// ConfiguredStatus reports "Configured" for non-empty values and "Missing" otherwise
func ConfiguredStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Missing"
	}
	return "Configured"
}
