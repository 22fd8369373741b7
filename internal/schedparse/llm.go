package schedparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const slotExtractionPrompt = `
You are a scheduling assistant for a recruiting platform. Extract concrete
interview time slots from the recruiter's message below.

### INSTRUCTIONS:
1. Resolve relative weekday names against the current date. "Monday" means the
   next Monday strictly after the current date.
2. Output valid JSON only. Do not wrap the output in markdown code blocks.
3. If no concrete date/time can be extracted, return an empty slots array.

### OUTPUT SCHEMA:
{
    "slots": [{"date": "YYYY-MM-DD", "time": "HH:MM"}],
    "ack_message": "One sentence summarizing the proposed slots"
}

### CURRENT DATE:
%s

### MESSAGE:
%s
`

// LLMParser delegates slot extraction to a Gemini model.
type LLMParser struct {
	client llms.Model
}

func NewLLMParser(ctx context.Context, apiKey, modelName string) (*LLMParser, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMParser{client: llm}, nil
}

func (p *LLMParser) Parse(ctx context.Context, message string, now time.Time) (*Result, error) {
	prompt := fmt.Sprintf(slotExtractionPrompt, now.Format(time.RFC3339), message)

	resp, err := llms.GenerateFromSinglePrompt(ctx, p.client, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm slot extraction: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &result); err != nil {
		return nil, fmt.Errorf("parse llm response: %w", err)
	}

	// The model is free-form; keep only well-formed slots.
	valid := result.Slots[:0]
	for _, s := range result.Slots {
		if _, err := time.Parse("2006-01-02", s.Date); err != nil {
			continue
		}
		if _, err := time.Parse("15:04", s.Time); err != nil {
			continue
		}
		valid = append(valid, s)
	}
	result.Slots = valid

	if len(result.Slots) == 0 {
		result.AckMessage = NoSlotsMessage
	} else if result.AckMessage == "" {
		result.AckMessage = ackMessage(result.Slots)
	}

	return &result, nil
}

// stripCodeFence removes a markdown code fence the model sometimes adds despite
// the prompt.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
