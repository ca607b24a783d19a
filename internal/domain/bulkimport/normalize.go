package bulkimport

import "strings"

// NormalizeKey lower-cases s and drops everything outside [a-z0-9]. It is the
// comparison key for program codes, program names, group names and headers.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeMobile(mobile string) string {
	return strings.TrimSpace(mobile)
}
