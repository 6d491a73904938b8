// Package pitch synthesizes sales narratives from client intelligence and
// matched portfolio candidates.
package pitch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

// Generator produces and refines pitches through JSON-mode completions.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a pitch generator.
func NewGenerator(client openai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

const generateSystem = `You are a presales consultant writing a pitch for a services firm
approaching a prospect. Ground every claim in the provided intelligence and portfolio
evidence; do not invent capabilities. The portfolio evidence is work done for OTHER
clients: NEVER imply the firm has worked with the prospect directly - attribute outcomes
to "similar organizations" or "companies such as X". Write the short pitch as 2-3
sentences an account executive could say verbatim. Structure the long pitch into titled
sections, each with bullet points that have a one-line summary and supporting detail
lines.
Respond with a single JSON object:
{"short": "...", "long_structured": {"sections": [{"title": "...",
"bullet_points": [{"summary": "...", "details": ["..."]}]}]}}`

// Generate synthesizes a pitch for a company from its intelligence bundle
// and the top matched portfolio candidates. A malformed completion degrades
// to an error-carrying pitch rather than an error.
func (g *Generator) Generate(ctx context.Context, company string, bundle *model.Bundle, candidates []model.ScoredCandidate) (*model.Pitch, error) {
	prompt := buildPrompt(company, bundle, candidates)

	raw, err := g.client.CompleteJSON(ctx, openai.CompletionRequest{
		Model:       g.model,
		System:      generateSystem,
		Prompt:      prompt,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pitch: generate")
	}

	var parsed struct {
		Short          string                 `json:"short"`
		LongStructured *model.StructuredPitch `json:"long_structured"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		zap.L().Warn("pitch response was not valid JSON",
			zap.String("company", company),
			zap.Error(err),
		)
		return errorPitch(err), nil
	}
	if parsed.Short == "" {
		return errorPitch(eris.New("model returned empty short pitch")), nil
	}

	p := &model.Pitch{
		Short:          parsed.Short,
		LongStructured: parsed.LongStructured,
	}
	p.Long = RenderLong(parsed.LongStructured)
	return p, nil
}

// errorPitch carries a malformed model response to the caller as pitch
// text instead of an error, so one bad completion does not fail the
// whole request.
func errorPitch(err error) *model.Pitch {
	msg := "Error generating pitch: " + err.Error()
	return &model.Pitch{Short: msg, Long: msg}
}

const refineSystem = `You are a presales consultant revising an existing pitch based on
feedback. Keep claims grounded; change only what the feedback requires.
Respond in exactly this format:
SHORT PITCH:
<revised short pitch>
LONG PITCH:
<revised long pitch>`

// Refine revises an existing pitch per free-text feedback. The structured
// long form is dropped; refined pitches carry text only.
func (g *Generator) Refine(ctx context.Context, current *model.Pitch, feedback string) (*model.Pitch, error) {
	if strings.TrimSpace(feedback) == "" {
		return nil, eris.New("pitch: empty feedback")
	}

	prompt := fmt.Sprintf("Current short pitch:\n%s\n\nCurrent long pitch:\n%s\n\nFeedback:\n%s",
		current.Short, current.Long, feedback)

	raw, err := g.client.Complete(ctx, openai.CompletionRequest{
		Model:       g.model,
		System:      refineSystem,
		Prompt:      prompt,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pitch: refine")
	}

	short, long := parseRefined(raw)
	if short == "" && long == "" {
		return nil, eris.New("pitch: refined response missing pitch markers")
	}
	if short == "" {
		short = current.Short
	}
	if long == "" {
		long = current.Long
	}
	return &model.Pitch{Short: short, Long: long}, nil
}

// parseRefined splits a refined response on its SHORT PITCH / LONG PITCH
// markers. Missing sections come back empty.
func parseRefined(text string) (short, long string) {
	upper := strings.ToUpper(text)
	shortIdx := strings.Index(upper, "SHORT PITCH:")
	longIdx := strings.Index(upper, "LONG PITCH:")

	if shortIdx >= 0 {
		end := len(text)
		if longIdx > shortIdx {
			end = longIdx
		}
		short = strings.TrimSpace(text[shortIdx+len("SHORT PITCH:") : end])
	}
	if longIdx >= 0 {
		long = strings.TrimSpace(text[longIdx+len("LONG PITCH:"):])
	}
	return short, long
}

// RenderLong flattens the structured pitch into readable text.
func RenderLong(sp *model.StructuredPitch) string {
	if sp == nil {
		return ""
	}
	var b strings.Builder
	for i, section := range sp.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", section.Title)
		for _, bp := range section.BulletPoints {
			fmt.Fprintf(&b, "- %s\n", bp.Summary)
			for _, d := range bp.Details {
				fmt.Fprintf(&b, "  %s\n", d)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// buildPrompt assembles the generation input from the bundle and the
// matched portfolio evidence.
func buildPrompt(company string, bundle *model.Bundle, candidates []model.ScoredCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prospect: %s\n\n", company)

	if bundle != nil && bundle.Error == "" {
		data, err := json.MarshalIndent(bundle, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "Intelligence:\n%s\n\n", data)
		}
	}

	if len(candidates) > 0 {
		b.WriteString("Relevant portfolio engagements:\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "- %s (%s, score %.0f): %s\n",
				c.Record.ClientName, c.Record.Industry, c.MatchScore, c.Record.Solution)
		}
	}
	return b.String()
}
