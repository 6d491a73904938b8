package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/industry"
	"github.com/evoke-group/presales-cli/pkg/anthropic"
)

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{Text: s.text}, nil
}

func TestDetermineIndustry_FailureDegradesToEmptyDetection(t *testing.T) {
	env := &appEnv{detector: industry.NewDetector(&stubLLM{err: eris.New("llm down")}, "model")}

	req := httptest.NewRequest(http.MethodPost, "/determine_industry", strings.NewReader(`{"company_name":"Acme"}`))
	w := httptest.NewRecorder()
	handleDetermineIndustry(env)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var det industry.Detection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &det))
	assert.Empty(t, det.Industry)
	assert.Zero(t, det.Confidence)
}

func TestDetermineIndustry_Success(t *testing.T) {
	env := &appEnv{detector: industry.NewDetector(&stubLLM{text: `{"industry": "Robotics", "confidence": 0.9}`}, "model")}

	req := httptest.NewRequest(http.MethodPost, "/determine_industry", strings.NewReader(`{"company_name":"Acme"}`))
	w := httptest.NewRecorder()
	handleDetermineIndustry(env)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var det industry.Detection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &det))
	assert.Equal(t, "Robotics", det.Industry)
}

func TestProvidedIntelligence(t *testing.T) {
	assert.Nil(t, providedIntelligence(nil))
	assert.Nil(t, providedIntelligence(json.RawMessage("null")))
	assert.Nil(t, providedIntelligence(json.RawMessage("not json")))
	assert.Nil(t, providedIntelligence(json.RawMessage(`{"error": "parse_error"}`)))

	bundle := providedIntelligence(json.RawMessage(`{"business_context": "Acme makes robots", "confidence_score": 0.7}`))
	require.NotNil(t, bundle)
	require.NotNil(t, bundle.BusinessContext)
	assert.Equal(t, "Acme makes robots", *bundle.BusinessContext)
}

func TestProvidedIntelligence_UpgradesLegacyShape(t *testing.T) {
	raw := json.RawMessage(`{"technologies": ["Azure"], "key_vendors": ["Microsoft"]}`)

	bundle := providedIntelligence(raw)
	require.NotNil(t, bundle)
	assert.True(t, bundle.LegacyTransformed)
	require.NotNil(t, bundle.Technologies)
	require.Len(t, bundle.Technologies.Confirmed, 1)
	assert.Equal(t, "Azure", bundle.Technologies.Confirmed[0].Name)
	require.NotNil(t, bundle.VendorsPartners)
	require.Len(t, bundle.VendorsPartners.Confirmed, 1)
	assert.Equal(t, "Microsoft", bundle.VendorsPartners.Confirmed[0].Name)
}
