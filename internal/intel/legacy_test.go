package intel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/model"
)

func TestUpgradeLegacy_MetricClassification(t *testing.T) {
	legacy := model.LegacyBundle{
		FinancialData: []model.Metric{
			{Metric: "Annual Revenue", Value: "$2.1B"},
			{Metric: "Market Cap", Value: "$15B"},
			{Metric: "Revenue CAGR", Value: "8%"},
			{Metric: "Employees", Value: "9000"},
		},
	}

	got := UpgradeLegacy(legacy)

	require.NotNil(t, got.FinancialData)
	require.NotNil(t, got.FinancialData.Revenue)
	assert.Equal(t, "$2.1B", *got.FinancialData.Revenue)
	require.NotNil(t, got.FinancialData.MarketCap)
	assert.Equal(t, "$15B", *got.FinancialData.MarketCap)
	require.NotNil(t, got.FinancialData.GrowthRate)
	assert.Equal(t, "8%", *got.FinancialData.GrowthRate)

	require.Len(t, got.FinancialData.OtherMetrics, 1)
	assert.Equal(t, "Employees", got.FinancialData.OtherMetrics[0].Metric)
	assert.True(t, got.LegacyTransformed)
}

func TestUpgradeLegacy_FlatListsBecomeConfirmed(t *testing.T) {
	legacy := model.LegacyBundle{
		Technologies: []string{"SAP", "  ", "Azure"},
		KeyVendors:   []string{"Accenture"},
	}

	got := UpgradeLegacy(legacy)

	require.Len(t, got.Technologies.Confirmed, 2)
	assert.Equal(t, "SAP", got.Technologies.Confirmed[0].Name)
	assert.Empty(t, got.Technologies.Inferred)

	require.Len(t, got.VendorsPartners.Confirmed, 1)
	assert.Equal(t, "vendor", got.VendorsPartners.Confirmed[0].RelationshipType)
}

func TestDecodeStored_LegacyShape(t *testing.T) {
	raw := []byte(`{
		"financial_data": [{"metric": "Revenue", "value": "$1M"}],
		"technologies": ["SAP"],
		"key_vendors": ["IBM"],
		"recent_announcements": [{"title": "Launch", "summary": "s"}]
	}`)

	got, err := DecodeStored(raw)
	require.NoError(t, err)
	assert.True(t, got.LegacyTransformed)
	require.NotNil(t, got.FinancialData.Revenue)
	assert.Equal(t, "$1M", *got.FinancialData.Revenue)
	require.Len(t, got.Announcements, 1)
}

func TestDecodeStored_Idempotent(t *testing.T) {
	legacy := []byte(`{"technologies": ["SAP"], "key_vendors": []}`)

	first, err := DecodeStored(legacy)
	require.NoError(t, err)

	stored, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := DecodeStored(stored)
	require.NoError(t, err)
	assert.Equal(t, first, second, "re-decoding an upgraded bundle must not change it")
}

func TestDecodeStored_CurrentShapePassesThrough(t *testing.T) {
	raw := []byte(`{
		"financial_data": {"revenue": "$5M", "other_metrics": []},
		"technologies": {"confirmed": [{"name": "SAP"}], "inferred": []},
		"confidence_score": 0.8
	}`)

	got, err := DecodeStored(raw)
	require.NoError(t, err)
	assert.False(t, got.LegacyTransformed)
	require.Len(t, got.Technologies.Confirmed, 1)
	assert.InDelta(t, 0.8, got.ConfidenceScore, 0.001)
}
