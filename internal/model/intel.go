package model

// Bundle is the structured synthesis of all gathered web evidence about a
// client. After normalization every top-level field is present (nulled,
// never absent). Error is set instead of fields when extraction failed.
type Bundle struct {
	FinancialData        *FinancialData  `json:"financial_data"`
	Technologies         *EvidenceLists  `json:"technologies"`
	VendorsPartners      *EvidenceLists  `json:"vendors_partners"`
	RecentProjects       []Project       `json:"recent_projects"`
	Announcements        []Announcement  `json:"announcements"`
	StrategicFocus       []StrategicItem `json:"strategic_focus"`
	CompetitiveLandscape []Competitor    `json:"competitive_landscape"`
	TechRoadmap          []RoadmapItem   `json:"tech_roadmap"`
	LeadershipTeam       []Leader        `json:"leadership_team"`
	ITInfrastructure     *string         `json:"it_infrastructure_summary"`
	BusinessContext      *string         `json:"business_context"`
	MarketPosition       *string         `json:"market_position"`
	ConfidenceScore      float64         `json:"confidence_score"`

	// LegacyTransformed marks bundles upgraded from the old flat-list schema.
	LegacyTransformed bool `json:"_legacy_transformed,omitempty"`

	// Error carries extraction failures ("parse_error", "no_data", ...) with
	// the truncated raw response for diagnostics. When Error is set no other
	// field is fabricated.
	Error string `json:"error,omitempty"`
	Raw   string `json:"raw,omitempty"`
}

// FinancialData holds the extracted financial metrics.
type FinancialData struct {
	Revenue       *string  `json:"revenue"`
	MarketCap     *string  `json:"market_cap"`
	GrowthRate    *string  `json:"growth_rate"`
	StockPrice    *string  `json:"stock_price"`
	PERatio       *string  `json:"pe_ratio"`
	DividendYield *string  `json:"dividend_yield"`
	OtherMetrics  []Metric `json:"other_metrics"`
	SourceURL     *string  `json:"source_url"`
	Confidence    float64  `json:"confidence"`
}

// Metric is one named financial figure.
type Metric struct {
	Metric    string  `json:"metric"`
	Value     string  `json:"value"`
	SourceURL *string `json:"source_url"`
}

// EvidenceLists separates directly-stated evidence from context-inferred
// evidence for technologies and vendor/partner relationships.
type EvidenceLists struct {
	Confirmed []EvidenceItem `json:"confirmed"`
	Inferred  []EvidenceItem `json:"inferred"`
}

// EvidenceItem is one confirmed or inferred entity.
type EvidenceItem struct {
	Name             string `json:"name"`
	SourceURL        string `json:"source_url,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Category         string `json:"category,omitempty"`
	RelationshipType string `json:"relationship_type,omitempty"`
}

// Project is a recent client project found in the evidence.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
	Timeline    string `json:"timeline"`
}

// Announcement is a recent press release or news item.
type Announcement struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url"`
	Date      string `json:"date"`
	Impact    string `json:"impact"`
}

// StrategicItem is one strategic theme with supporting evidence.
type StrategicItem struct {
	Theme     string `json:"theme"`
	Evidence  string `json:"evidence"`
	SourceURL string `json:"source_url,omitempty"`
	Priority  string `json:"priority"`
}

// Competitor describes one entry in the competitive landscape.
type Competitor struct {
	Competitor   string `json:"competitor"`
	Relationship string `json:"relationship"`
	SourceURL    string `json:"source_url"`
}

// RoadmapItem is a planned technology initiative.
type RoadmapItem struct {
	Initiative  string `json:"initiative"`
	Timeline    string `json:"timeline"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
}

// Leader is one member of the leadership team.
type Leader struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Background string `json:"background"`
	SourceURL  string `json:"source_url"`
}

// LegacyBundle is the older flat-list intelligence shape, kept only as the
// input side of the upgrade path.
type LegacyBundle struct {
	FinancialData       []Metric       `json:"financial_data"`
	Technologies        []string       `json:"technologies"`
	KeyVendors          []string       `json:"key_vendors"`
	RecentAnnouncements []Announcement `json:"recent_announcements"`
}
