// Package redact scrubs sensitive content from contract descriptions before
// they are sent to an external text-completion provider. Descriptions are
// pasted from procurement portals and routinely carry contracting-officer
// contact details and the occasional leaked credential.
package redact

import "regexp"

const redacted = "[REDACTED]"

// patterns holds detection regexes in priority order.
var patterns = []*regexp.Regexp{
	// Email addresses (contracting officer contacts)
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	// US phone numbers, with or without separators
	regexp.MustCompile(`(?:\+1[\s.\-]?)?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}`),
	// Social security numbers
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// OpenAI / Anthropic secret keys — word-boundary aware
	regexp.MustCompile(`(?:^|\s|["'])sk-[a-zA-Z0-9]{20,}`),
	// Bearer tokens — require minimum 20-char token to avoid false positives
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`),
	// Inline password assignments
	regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
}

// Clean replaces known sensitive patterns in input with [REDACTED].
// Everything else, including line structure, is left untouched.
func Clean(input string) string {
	for _, re := range patterns {
		input = re.ReplaceAllString(input, redacted)
	}
	return input
}
