// Package industry classifies a prospect company into an industry.
package industry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/evoke-group/presales-cli/pkg/anthropic"
)

// Detection is a classified industry with the model's confidence.
type Detection struct {
	Industry   string  `json:"industry"`
	Confidence float64 `json:"confidence"`
}

// Detector determines a company's industry via a short LLM completion.
type Detector struct {
	llm   anthropic.Client
	model string
}

// NewDetector creates a detector.
func NewDetector(llm anthropic.Client, model string) *Detector {
	return &Detector{llm: llm, model: model}
}

// Detect classifies the company. hint is optional extra context such as a
// website or description that sharpens the classification.
func (d *Detector) Detect(ctx context.Context, company, hint string) (*Detection, error) {
	if strings.TrimSpace(company) == "" {
		return nil, eris.New("industry: empty company name")
	}

	prompt := fmt.Sprintf("What industry is the company %q in?", company)
	if hint != "" {
		prompt += "\nContext: " + hint
	}
	prompt += `
Respond with JSON only: {"industry": "<concise industry name>", "confidence": <0.0-1.0>}`

	resp, err := d.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     d.model,
		MaxTokens: 128,
		Prompt:    prompt,
	})
	if err != nil {
		return nil, eris.Wrap(err, "industry: detect")
	}

	var det Detection
	if err := json.Unmarshal([]byte(cleanJSONResponse(resp.Text)), &det); err != nil {
		return nil, eris.Wrap(err, "industry: parse detection")
	}
	if det.Industry == "" {
		return nil, eris.New("industry: model returned no industry")
	}
	if det.Confidence < 0 {
		det.Confidence = 0
	}
	if det.Confidence > 1 {
		det.Confidence = 1
	}
	return &det, nil
}

// cleanJSONResponse strips markdown fences and surrounding prose, keeping
// the first top-level JSON object.
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
