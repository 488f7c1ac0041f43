package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

// principalPrefix is the number of runes MaskPrincipal keeps.
const principalPrefix = 6

var redactionAllowlist = map[string]struct{}{
	"service":    {},
	"env":        {},
	"message":    {},
	"severity":   {},
	"timestamp":  {},
	"error":      {},
	"method":     {},
	"module":     {},
	"code":       {},
	"request_id": {},
	"status":     {},
	"path":       {},
}

// IsAllowlisted reports whether the provided key is exempt from redaction.
func IsAllowlisted(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	_, ok := redactionAllowlist[normalized]
	return ok
}

// MaskField returns a slog.Attr that redacts the supplied value unless the key is
// allowlisted. Empty values pass through untouched.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskPrincipal keeps a short prefix of a principal so log lines stay
// correlatable without exposing the full identity.
func MaskPrincipal(key, principal string) slog.Attr {
	trimmed := strings.TrimSpace(principal)
	runes := []rune(trimmed)
	if len(runes) <= principalPrefix {
		return MaskField(key, trimmed)
	}
	return slog.String(key, string(runes[:principalPrefix])+"…")
}
