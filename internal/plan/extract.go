package plan

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/damii-health/wellnessd/internal/models"
)

// ErrNoJSONObject indicates no parseable JSON object was found in model output.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// StripFences removes markdown code-fence wrappers from model output. Models under a
// "JSON only" instruction still occasionally wrap the payload in ```json fences.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ExtractOutput recovers a WellnessPlanOutput from raw model text: strip fences, cut
// to the outermost JSON object, unmarshal. Structural validation is the caller's job.
func ExtractOutput(raw string) (models.WellnessPlanOutput, error) {
	var out models.WellnessPlanOutput

	text := StripFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return out, ErrNoJSONObject
	}
	text = text[start : end+1]

	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, err
	}
	return out, nil
}
