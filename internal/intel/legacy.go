package intel

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/evoke-group/presales-cli/internal/model"
)

// DecodeStored parses a stored intelligence payload, upgrading the old
// flat-list shape to the current bundle shape when needed. Already-current
// payloads pass through unchanged, so decoding is idempotent.
func DecodeStored(raw []byte) (*model.Bundle, error) {
	if isLegacyShape(raw) {
		var legacy model.LegacyBundle
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, eris.Wrap(err, "intel: unmarshal legacy bundle")
		}
		return UpgradeLegacy(legacy), nil
	}

	var bundle model.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, eris.Wrap(err, "intel: unmarshal bundle")
	}
	return &bundle, nil
}

// isLegacyShape reports whether the payload uses the old schema, where
// technologies was a flat string array instead of confirmed/inferred lists.
func isLegacyShape(raw []byte) bool {
	var probe struct {
		Technologies json.RawMessage `json:"technologies"`
		KeyVendors   json.RawMessage `json:"key_vendors"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if len(probe.KeyVendors) > 0 {
		return true
	}
	t := strings.TrimSpace(string(probe.Technologies))
	return strings.HasPrefix(t, "[")
}

// UpgradeLegacy converts an old flat-list bundle to the current shape.
// Flat metrics are routed to named financial fields by keyword; flat
// technology and vendor names become confirmed evidence with no source.
// The result is marked so a second upgrade pass leaves it alone.
func UpgradeLegacy(legacy model.LegacyBundle) *model.Bundle {
	bundle := &model.Bundle{
		FinancialData:        &model.FinancialData{OtherMetrics: []model.Metric{}},
		Technologies:         &model.EvidenceLists{Confirmed: []model.EvidenceItem{}, Inferred: []model.EvidenceItem{}},
		VendorsPartners:      &model.EvidenceLists{Confirmed: []model.EvidenceItem{}, Inferred: []model.EvidenceItem{}},
		RecentProjects:       []model.Project{},
		Announcements:        []model.Announcement{},
		StrategicFocus:       []model.StrategicItem{},
		CompetitiveLandscape: []model.Competitor{},
		TechRoadmap:          []model.RoadmapItem{},
		LeadershipTeam:       []model.Leader{},
		LegacyTransformed:    true,
	}

	for _, m := range legacy.FinancialData {
		key := strings.ToLower(m.Metric)
		value := m.Value
		switch {
		case strings.Contains(key, "revenue"):
			bundle.FinancialData.Revenue = &value
		case strings.Contains(key, "market") && strings.Contains(key, "cap"):
			bundle.FinancialData.MarketCap = &value
		case strings.Contains(key, "growth") || strings.Contains(key, "cagr"):
			bundle.FinancialData.GrowthRate = &value
		default:
			bundle.FinancialData.OtherMetrics = append(bundle.FinancialData.OtherMetrics, m)
		}
	}

	for _, name := range legacy.Technologies {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		bundle.Technologies.Confirmed = append(bundle.Technologies.Confirmed, model.EvidenceItem{
			Name:   name,
			Reason: "listed in legacy intelligence",
		})
	}

	for _, name := range legacy.KeyVendors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		bundle.VendorsPartners.Confirmed = append(bundle.VendorsPartners.Confirmed, model.EvidenceItem{
			Name:             name,
			Reason:           "listed in legacy intelligence",
			RelationshipType: "vendor",
		})
	}

	if len(legacy.RecentAnnouncements) > 0 {
		bundle.Announcements = legacy.RecentAnnouncements
	}

	return bundle
}
