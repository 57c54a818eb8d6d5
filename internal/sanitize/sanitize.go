// Package sanitize masks personally identifying substrings in user input and caps
// its length before any downstream processing or logging.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/damii-health/wellnessd/internal/models"
)

// TruncationMarker is appended whenever input is cut at the length cap.
const TruncationMarker = " [truncated]"

// piiRule pairs a recognized PII pattern with its fixed placeholder token.
type piiRule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Masking rules applied in order: email, phone, government ID, payment card.
// The placeholders never match any rule, which keeps Input idempotent.
var piiRules = []piiRule{
	{
		pattern:     regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		placeholder: "[email]",
	},
	{
		// Phone numbers with optional country code, separators, and area-code parens.
		pattern:     regexp.MustCompile(`(\+?\d{1,3}[\s\-.]?)?\(?\d{3}\)?[\s\-.]?\d{3}[\s\-.]?\d{4}\b`),
		placeholder: "[phone]",
	},
	{
		// Government ID numbers in the common ddd-dd-dddd layout.
		pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		placeholder: "[id-number]",
	},
	{
		// Payment card numbers: four groups of four digits.
		pattern:     regexp.MustCompile(`\b(?:\d[\s\-]?){13,16}\b`),
		placeholder: "[card-number]",
	},
}

// Input masks PII in raw user text and truncates it to the configured cap, appending
// a truncation marker when cut. It accepts any string including empty and never fails.
func Input(raw string) string {
	out := raw
	for _, rule := range piiRules {
		out = rule.pattern.ReplaceAllString(out, rule.placeholder)
	}
	if len(out) > models.MaxSanitizedInputLength {
		cut := models.MaxSanitizedInputLength - len(TruncationMarker)
		// Avoid splitting a UTF-8 sequence at the cut point.
		for cut > 0 && !isRuneStart(out[cut]) {
			cut--
		}
		out = out[:cut] + TruncationMarker
	}
	return out
}

// ContainsPII reports whether any recognized PII pattern still matches the text.
// Used by tests and as a guard before logging excerpts.
func ContainsPII(text string) bool {
	for _, rule := range piiRules {
		if rule.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Excerpt returns a short, sanitize-safe excerpt of text for log context.
func Excerpt(text string, max int) string {
	text = Input(text)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut]) + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
