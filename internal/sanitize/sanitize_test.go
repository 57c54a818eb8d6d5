package sanitize

import (
	"strings"
	"testing"

	"github.com/damii-health/wellnessd/internal/models"
)

func TestInputMasksEmail(t *testing.T) {
	got := Input("you can reach me at jane.doe+work@example.co.uk if needed")
	if strings.Contains(got, "jane.doe") || strings.Contains(got, "example.co.uk") {
		t.Errorf("email survived sanitization: %q", got)
	}
	if !strings.Contains(got, "[email]") {
		t.Errorf("expected [email] placeholder in %q", got)
	}
}

func TestInputMasksPhoneNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dashed", "call me at 555-123-4567 tomorrow"},
		{"parens", "my number is (555) 123-4567"},
		{"country code", "reach me on +1 555 123 4567"},
		{"dotted", "it's 555.123.4567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Input(tt.input)
			if !strings.Contains(got, "[phone]") {
				t.Errorf("Input(%q) = %q, expected [phone] placeholder", tt.input, got)
			}
			if strings.Contains(got, "123-4567") || strings.Contains(got, "123 4567") || strings.Contains(got, "123.4567") {
				t.Errorf("phone digits survived sanitization: %q", got)
			}
		})
	}
}

func TestInputMasksIDNumber(t *testing.T) {
	got := Input("my ssn is 123-45-6789 ok")
	if strings.Contains(got, "123-45-6789") {
		t.Errorf("id number survived sanitization: %q", got)
	}
}

func TestInputMasksCardNumber(t *testing.T) {
	got := Input("card 4111 1111 1111 1111 was charged")
	if strings.Contains(got, "4111 1111 1111 1111") {
		t.Errorf("card number survived sanitization: %q", got)
	}
}

func TestInputEmptyString(t *testing.T) {
	if got := Input(""); got != "" {
		t.Errorf("Input(\"\") = %q, want empty string", got)
	}
}

func TestInputPlainTextUnchanged(t *testing.T) {
	in := "I have been feeling stressed about work and sleeping badly"
	if got := Input(in); got != in {
		t.Errorf("Input(%q) = %q, expected unchanged", in, got)
	}
}

func TestInputIdempotent(t *testing.T) {
	raw := "email jane@example.com phone 555-123-4567 ssn 123-45-6789"
	once := Input(raw)
	twice := Input(once)
	if once != twice {
		t.Errorf("sanitization not idempotent:\n once: %q\ntwice: %q", once, twice)
	}
}

func TestInputTruncatesLongText(t *testing.T) {
	raw := strings.Repeat("a", 5000)
	got := Input(raw)
	if len(got) > models.MaxSanitizedInputLength {
		t.Errorf("length %d exceeds cap %d", len(got), models.MaxSanitizedInputLength)
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("truncated output missing marker, got suffix %q", got[len(got)-20:])
	}
}

func TestInputShortTextNotTruncated(t *testing.T) {
	raw := strings.Repeat("b", models.MaxSanitizedInputLength)
	got := Input(raw)
	if got != raw {
		t.Errorf("text at exactly the cap should pass unchanged")
	}
}

func TestContainsPII(t *testing.T) {
	if !ContainsPII("write to jane@example.com") {
		t.Error("expected ContainsPII to detect email")
	}
	if ContainsPII(Input("write to jane@example.com")) {
		t.Error("sanitized output should not contain PII")
	}
	if ContainsPII("just feeling tired lately") {
		t.Error("plain text flagged as PII")
	}
}

func TestExcerpt(t *testing.T) {
	got := Excerpt("I feel very stressed about everything going on right now", 20)
	if len(got) > 23 { // cut + "..."
		t.Errorf("excerpt too long: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	short := Excerpt("short text", 50)
	if short != "short text" {
		t.Errorf("short text should pass through, got %q", short)
	}
}
