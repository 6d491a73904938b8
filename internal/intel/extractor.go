// Package intel extracts structured client intelligence from aggregated
// research evidence.
package intel

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/internal/search"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

// Limits bounds each list in the extracted bundle.
type Limits struct {
	MaxProjects      int
	MaxAnnouncements int
	MaxStrategic     int
	MaxCompetitors   int
	MaxRoadmap       int
	MaxLeadership    int
}

// DefaultLimits returns the standard bundle bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxProjects:      15,
		MaxAnnouncements: 15,
		MaxStrategic:     15,
		MaxCompetitors:   10,
		MaxRoadmap:       12,
		MaxLeadership:    8,
	}
}

// Extractor turns a research report into a structured intelligence bundle
// via a JSON-mode completion.
type Extractor struct {
	client openai.Client
	model  string
	limits Limits
}

// NewExtractor creates an extractor.
func NewExtractor(client openai.Client, model string, limits Limits) *Extractor {
	return &Extractor{client: client, model: model, limits: limits}
}

const extractSystem = `You are a B2B presales intelligence analyst. You extract structured
intelligence about a prospect company from web research evidence. Only state what the
evidence supports; use null for unknown values and empty arrays where nothing was found.
For technologies and vendors, separate items the evidence states directly ("confirmed")
from items you infer from context ("inferred"), and give the inference reason.
Always include a source_url when one supports the item.
Respond with a single JSON object with exactly these keys:
financial_data (object with revenue, market_cap, growth_rate, stock_price, pe_ratio,
dividend_yield, other_metrics, source_url, confidence), technologies (object with
confirmed, inferred), vendors_partners (object with confirmed, inferred),
recent_projects, announcements, strategic_focus, competitive_landscape, tech_roadmap,
leadership_team, it_infrastructure_summary, business_context, market_position,
confidence_score.`

// Extract synthesizes a bundle from the report. Extraction never returns a
// Go error for model failures: the bundle's Error field carries them so
// batch runs keep going and callers can persist the failure.
func (e *Extractor) Extract(ctx context.Context, report *search.Report) *model.Bundle {
	if len(report.Results) == 0 && len(report.Pages) == 0 {
		return &model.Bundle{Error: "no_data"}
	}

	raw, err := e.client.CompleteJSON(ctx, openai.CompletionRequest{
		Model:       e.model,
		System:      extractSystem,
		Prompt:      "Extract intelligence about " + report.Company + " from this research:\n\n" + search.FormatReport(report),
		Temperature: 0.1,
	})
	if err != nil {
		zap.L().Warn("intel extraction failed",
			zap.String("company", report.Company),
			zap.Error(err),
		)
		return &model.Bundle{Error: "completion_error: " + err.Error()}
	}

	var bundle model.Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		zap.L().Warn("intel response unparseable",
			zap.String("company", report.Company),
			zap.Error(err),
		)
		return &model.Bundle{
			Error: "parse_error",
			Raw:   truncateRaw(raw, 500),
		}
	}

	e.normalize(&bundle)
	return &bundle
}

// normalize fills absent composite fields with empty values and applies the
// list limits, so consumers never see a missing key.
func (e *Extractor) normalize(b *model.Bundle) {
	if b.FinancialData == nil {
		b.FinancialData = &model.FinancialData{}
	}
	if b.FinancialData.OtherMetrics == nil {
		b.FinancialData.OtherMetrics = []model.Metric{}
	}
	if b.Technologies == nil {
		b.Technologies = &model.EvidenceLists{}
	}
	if b.VendorsPartners == nil {
		b.VendorsPartners = &model.EvidenceLists{}
	}
	normalizeEvidence(b.Technologies)
	normalizeEvidence(b.VendorsPartners)

	if b.RecentProjects == nil {
		b.RecentProjects = []model.Project{}
	}
	if b.Announcements == nil {
		b.Announcements = []model.Announcement{}
	}
	if b.StrategicFocus == nil {
		b.StrategicFocus = []model.StrategicItem{}
	}
	if b.CompetitiveLandscape == nil {
		b.CompetitiveLandscape = []model.Competitor{}
	}
	if b.TechRoadmap == nil {
		b.TechRoadmap = []model.RoadmapItem{}
	}
	if b.LeadershipTeam == nil {
		b.LeadershipTeam = []model.Leader{}
	}

	b.RecentProjects = b.RecentProjects[:capLen(len(b.RecentProjects), e.limits.MaxProjects)]
	b.Announcements = b.Announcements[:capLen(len(b.Announcements), e.limits.MaxAnnouncements)]
	b.StrategicFocus = b.StrategicFocus[:capLen(len(b.StrategicFocus), e.limits.MaxStrategic)]
	b.CompetitiveLandscape = b.CompetitiveLandscape[:capLen(len(b.CompetitiveLandscape), e.limits.MaxCompetitors)]
	b.TechRoadmap = b.TechRoadmap[:capLen(len(b.TechRoadmap), e.limits.MaxRoadmap)]
	b.LeadershipTeam = b.LeadershipTeam[:capLen(len(b.LeadershipTeam), e.limits.MaxLeadership)]

	if b.ConfidenceScore < 0 {
		b.ConfidenceScore = 0
	}
	if b.ConfidenceScore > 1 {
		b.ConfidenceScore = 1
	}
}

func normalizeEvidence(l *model.EvidenceLists) {
	if l.Confirmed == nil {
		l.Confirmed = []model.EvidenceItem{}
	}
	if l.Inferred == nil {
		l.Inferred = []model.EvidenceItem{}
	}
}

func capLen(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}

func truncateRaw(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
