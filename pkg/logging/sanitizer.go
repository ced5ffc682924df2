package logging

import (
	"regexp"
)

const (
	// MaxNoteLogLength is the maximum length of a free-text note to log
	MaxNoteLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match email addresses
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Pattern to match phone numbers (10+ digits, optional separators)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{8,}\d`)

	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// SanitizePII removes customer-identifying data from a string before it is
// logged. Shipping and payment flows must route every logged field through
// this function.
func SanitizePII(s string) string {
	if s == "" {
		return ""
	}
	sanitized := emailPattern.ReplaceAllString(s, RedactedText)
	sanitized = phonePattern.ReplaceAllString(sanitized, RedactedText)
	return sanitized
}

// SanitizeError sanitizes error messages that might contain sensitive data
// before logging, covering credentials and customer contact details.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := apiKeyPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	sanitized = emailPattern.ReplaceAllString(sanitized, RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed.
// Used to keep long tasting notes out of log lines.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
