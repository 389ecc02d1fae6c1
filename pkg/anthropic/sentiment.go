package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ReviewSummary is the structured verdict over a block of review text.
type ReviewSummary struct {
	Polarity float64  `json:"polarity"` // -1.0 (scathing) to 1.0 (glowing)
	Themes   []string `json:"themes"`
	Summary  string   `json:"summary"`
}

const sentimentSystem = `You summarize customer review text for a shopping assistant.
Respond with a single JSON object and nothing else:
{"polarity": <float -1.0 to 1.0>, "themes": [<up to 5 short strings>], "summary": "<one sentence>"}`

// Summarizer produces a review summary from raw review text.
type Summarizer struct {
	client    Client
	model     string
	maxTokens int64
}

// NewSummarizer creates a review summarizer on top of a message client.
func NewSummarizer(client Client, model string) *Summarizer {
	return &Summarizer{client: client, model: model, maxTokens: 512}
}

// Summarize sends the review text for analysis and parses the JSON verdict.
func (s *Summarizer) Summarize(ctx context.Context, text string) (*ReviewSummary, error) {
	resp, err := s.client.CreateMessage(ctx, MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    sentimentSystem,
		Messages: []Message{
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: summarize reviews")
	}

	return parseReviewSummary(resp.Text())
}

// parseReviewSummary tolerates code fences and leading prose around the JSON
// object.
func parseReviewSummary(raw string) (*ReviewSummary, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, eris.Errorf("anthropic: no JSON object in response: %q", raw)
	}

	var out ReviewSummary
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, eris.Wrap(err, "anthropic: parse review summary")
	}
	if out.Polarity < -1 {
		out.Polarity = -1
	}
	if out.Polarity > 1 {
		out.Polarity = 1
	}
	return &out, nil
}
