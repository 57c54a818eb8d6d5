// Package safety provides heuristic crisis-language detection and the fixed
// crisis-resource response used when critical language is found.
//
// The classifier is a blunt keyword filter, not a clinical judgment: false positives
// and false negatives are an accepted tradeoff for zero latency and no external calls.
package safety

import (
	"regexp"
	"strings"

	"github.com/damii-health/wellnessd/internal/models"
)

// Critical patterns: explicit self-harm and suicide language. Any match yields
// VerdictCritical regardless of what else the text contains.
var criticalPhrases = []string{
	"kill myself",
	"killing myself",
	"end my life",
	"ending my life",
	"suicide",
	"suicidal",
	"want to die",
	"wish i was dead",
	"wish i were dead",
	"better off dead",
	"hurt myself",
	"harm myself",
	"self-harm",
	"self harm",
	"cut myself",
	"take my own life",
	"don't want to live",
	"dont want to live",
	"no reason to live",
}

// Concerning patterns: hopelessness and crisis-adjacent language. Generation still
// proceeds, with a gentle-response annotation added to the prompt.
var concerningPhrases = []string{
	"hopeless",
	"worthless",
	"no way out",
	"can't go on",
	"cant go on",
	"give up on everything",
	"giving up on everything",
	"everyone would be better without me",
	"nothing matters anymore",
	"completely alone",
	"no one cares",
	"hate myself",
	"can't take it anymore",
	"cant take it anymore",
}

// criticalPatterns covers phrasings with variable wording that plain substrings miss.
var criticalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwant(?:ed)?\s+to\s+(?:die|disappear\s+forever)\b`),
	regexp.MustCompile(`(?i)\bthink(?:ing)?\s+about\s+(?:suicide|killing\s+myself|ending\s+it(?:\s+all)?)\b`),
	regexp.MustCompile(`(?i)\bend(?:ing)?\s+it\s+all\b`),
}

// Classify maps sanitized text to a three-valued safety verdict. Critical matches
// always take precedence over concerning ones; the verdict is never downgraded.
// Deterministic, stateless, no external calls.
func Classify(sanitized string) models.SafetyVerdict {
	lower := strings.ToLower(sanitized)
	for _, phrase := range criticalPhrases {
		if strings.Contains(lower, phrase) {
			return models.VerdictCritical
		}
	}
	for _, pattern := range criticalPatterns {
		if pattern.MatchString(sanitized) {
			return models.VerdictCritical
		}
	}
	for _, phrase := range concerningPhrases {
		if strings.Contains(lower, phrase) {
			return models.VerdictConcerning
		}
	}
	return models.VerdictNone
}
