package analysis

import "strings"

// ParseConstraints splits the comma separated constraints field into trimmed
// entries, keeping their order. Empty entries are kept. A comma that groups
// thousands inside a number ("$10,000") is part of the entry, not a delimiter.
func ParseConstraints(raw string) []string {
	parts := make([]string, 0, strings.Count(raw, ",")+1)
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] != ',' || isThousandsSeparator(raw, i) {
			continue
		}
		parts = append(parts, strings.TrimSpace(raw[start:i]))
		start = i + 1
	}
	return append(parts, strings.TrimSpace(raw[start:]))
}

// isThousandsSeparator reports whether the comma at i sits between a digit and
// exactly three digits.
func isThousandsSeparator(s string, i int) bool {
	if i == 0 || !isDigit(s[i-1]) {
		return false
	}
	end := i + 4
	if end > len(s) {
		return false
	}
	for j := i + 1; j < end; j++ {
		if !isDigit(s[j]) {
			return false
		}
	}
	return end == len(s) || !isDigit(s[end])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
