package pitch

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

type fakeCompleter struct {
	completeText string
	jsonText     string
	err          error
	lastReq      openai.CompletionRequest
}

func (f *fakeCompleter) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, eris.New("fake: not implemented")
}

func (f *fakeCompleter) Complete(_ context.Context, req openai.CompletionRequest) (string, error) {
	f.lastReq = req
	return f.completeText, f.err
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, req openai.CompletionRequest) (string, error) {
	f.lastReq = req
	return f.jsonText, f.err
}

func TestGenerate(t *testing.T) {
	client := &fakeCompleter{jsonText: `{
		"short": "Acme should work with us.",
		"long_structured": {"sections": [
			{"title": "Why us", "bullet_points": [
				{"summary": "Proven track record", "details": ["Delivered for similar clients"]}
			]}
		]}
	}`}
	g := NewGenerator(client, "model")

	got, err := g.Generate(context.Background(), "Acme", &model.Bundle{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme should work with us.", got.Short)
	require.NotNil(t, got.LongStructured)
	assert.Contains(t, got.Long, "Why us")
	assert.Contains(t, got.Long, "Proven track record")
}

func TestGenerate_MalformedJSONDegrades(t *testing.T) {
	g := NewGenerator(&fakeCompleter{jsonText: "not json"}, "model")

	got, err := g.Generate(context.Background(), "Acme", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, got.Short, "Error generating pitch")
	assert.Equal(t, got.Short, got.Long)
	assert.Nil(t, got.LongStructured)
}

func TestGenerate_EmptyShortDegrades(t *testing.T) {
	g := NewGenerator(&fakeCompleter{jsonText: `{"short": ""}`}, "model")

	got, err := g.Generate(context.Background(), "Acme", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, got.Short, "Error generating pitch")
}

func TestGenerate_ForbidsDirectEngagementClaims(t *testing.T) {
	client := &fakeCompleter{jsonText: `{"short": "ok"}`}
	g := NewGenerator(client, "model")

	_, err := g.Generate(context.Background(), "Acme", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, client.lastReq.System, "similar organizations")
	assert.Contains(t, client.lastReq.System, "NEVER imply the firm has worked with the prospect")
}

func TestRefine(t *testing.T) {
	client := &fakeCompleter{completeText: `SHORT PITCH:
A sharper opener.
LONG PITCH:
A longer revised pitch.`}
	g := NewGenerator(client, "model")

	got, err := g.Refine(context.Background(), &model.Pitch{Short: "old", Long: "old long"}, "make it sharper")
	require.NoError(t, err)
	assert.Equal(t, "A sharper opener.", got.Short)
	assert.Equal(t, "A longer revised pitch.", got.Long)
}

func TestRefine_MissingSectionKeepsCurrent(t *testing.T) {
	client := &fakeCompleter{completeText: "SHORT PITCH:\nOnly the short changed."}
	g := NewGenerator(client, "model")

	got, err := g.Refine(context.Background(), &model.Pitch{Short: "old", Long: "old long"}, "feedback")
	require.NoError(t, err)
	assert.Equal(t, "Only the short changed.", got.Short)
	assert.Equal(t, "old long", got.Long)
}

func TestRefine_NoMarkersFails(t *testing.T) {
	g := NewGenerator(&fakeCompleter{completeText: "I revised it for you."}, "model")
	_, err := g.Refine(context.Background(), &model.Pitch{Short: "s", Long: "l"}, "feedback")
	assert.Error(t, err)
}

func TestRefine_EmptyFeedbackFails(t *testing.T) {
	g := NewGenerator(&fakeCompleter{}, "model")
	_, err := g.Refine(context.Background(), &model.Pitch{}, "   ")
	assert.Error(t, err)
}

func TestRenderLong(t *testing.T) {
	sp := &model.StructuredPitch{Sections: []model.PitchSection{
		{Title: "Fit", BulletPoints: []model.BulletPoint{
			{Summary: "Industry match", Details: []string{"Did similar work"}},
		}},
	}}
	text := RenderLong(sp)
	assert.Contains(t, text, "Fit")
	assert.Contains(t, text, "- Industry match")
	assert.Contains(t, text, "Did similar work")
	assert.Empty(t, RenderLong(nil))
}

func TestExportText(t *testing.T) {
	out := ExportText("Acme", &model.Pitch{Short: "short pitch", Long: "long pitch"})
	assert.Contains(t, out, "Pitch: Acme")
	assert.Contains(t, out, "SHORT PITCH")
	assert.Contains(t, out, "short pitch")
	assert.Contains(t, out, "long pitch")
}
