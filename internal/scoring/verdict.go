package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/qri-io/jsonschema"
	"math"
	"strings"
)

// JudgmentSchema is the contract an LLM answer has to satisfy.
const JudgmentSchema = `{
  "type": "object",
  "required": ["score", "reason_summary", "reasons"],
  "properties": {
    "score": {"type": "number"},
    "reason_summary": {"type": "string"},
    "reasons": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "detail"],
        "properties": {
          "label": {"type": "string"},
          "detail": {"type": "string"}
        }
      }
    }
  }
}`

var judgmentSchema = mustLoadSchema(JudgmentSchema)

// verdict is either a score or the reason the answer could not be used.
type verdict struct {
	score  *models.Score
	reason string
}

func scored(score models.Score) verdict {
	return verdict{score: &score}
}

func unscorable(reason string) verdict {
	return verdict{reason: reason}
}

func (v verdict) scored() bool {
	return v.score != nil
}

type judgment struct {
	Score         float64         `json:"score"`
	ReasonSummary string          `json:"reason_summary"`
	Reasons       []models.Reason `json:"reasons"`
}

func parseVerdict(ctx context.Context, raw string) verdict {
	text := stripCodeFence(raw)
	if text == "" {
		return unscorable("empty response")
	}

	keyErrors, err := judgmentSchema.ValidateBytes(ctx, []byte(text))
	if err != nil {
		return unscorable("response is not valid json: " + err.Error())
	}
	if len(keyErrors) > 0 {
		messages := make([]string, 0, len(keyErrors))
		for _, keyErr := range keyErrors {
			messages = append(messages, fmt.Sprintf("%s: %s", keyErr.PropertyPath, keyErr.Message))
		}
		return unscorable("response violates schema: " + strings.Join(messages, "; "))
	}

	var j judgment
	if err = json.Unmarshal([]byte(text), &j); err != nil {
		return unscorable("failed to decode response: " + err.Error())
	}
	if math.IsNaN(j.Score) || math.IsInf(j.Score, 0) {
		return unscorable("score is not a finite number")
	}

	return scored(models.Score{
		Score:         int(math.Round(math.Max(0, math.Min(100, j.Score)))),
		ReasonSummary: j.ReasonSummary,
		Reasons:       j.Reasons,
	})
}

// stripCodeFence removes a ```json ... ``` wrapper if the model added one.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if newline := strings.IndexByte(text, '\n'); newline >= 0 {
		text = text[newline+1:]
	} else {
		text = text[3:]
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

func clamp(score int) int {
	return max(0, min(100, score))
}

func mustLoadSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("invalid judgment schema: %v", err))
	}
	return rs
}
