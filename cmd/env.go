package main

import (
	"time"

	"github.com/evoke-group/presales-cli/internal/config"
	"github.com/evoke-group/presales-cli/internal/embedding"
	"github.com/evoke-group/presales-cli/internal/industry"
	"github.com/evoke-group/presales-cli/internal/intel"
	"github.com/evoke-group/presales-cli/internal/match"
	"github.com/evoke-group/presales-cli/internal/pitch"
	"github.com/evoke-group/presales-cli/internal/portfolio"
	"github.com/evoke-group/presales-cli/internal/resilience"
	"github.com/evoke-group/presales-cli/internal/scrape"
	"github.com/evoke-group/presales-cli/internal/search"
	anthropicpkg "github.com/evoke-group/presales-cli/pkg/anthropic"
	"github.com/evoke-group/presales-cli/pkg/duckduckgo"
	"github.com/evoke-group/presales-cli/pkg/googleweb"
	openaipkg "github.com/evoke-group/presales-cli/pkg/openai"
	"github.com/evoke-group/presales-cli/pkg/serpapi"
)

// appEnv wires the full pipeline from config. Every command builds one.
type appEnv struct {
	store      *portfolio.Store
	embedder   *embedding.Service
	selector   *match.Selector
	researcher *search.Researcher
	extractor  *intel.Extractor
	generator  *pitch.Generator
	detector   *industry.Detector
}

func newAppEnv(cfg *config.Config) *appEnv {
	store := portfolio.NewStore(cfg.Portfolio.Path)

	openaiClient := openaipkg.NewClient(openaipkg.Config{
		APIKey:          cfg.OpenAI.Key,
		BaseURL:         cfg.OpenAI.BaseURL,
		EmbeddingModel:  cfg.Embedding.Model,
		EmbeddingDims:   cfg.Embedding.Dimensions,
		CompletionModel: cfg.OpenAI.Model,
	})
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	embedder := embedding.NewService(openaiClient, embedding.Config{
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
		CachePath:  cfg.Embedding.CachePath,
	}, store.Mtime)

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Search.Retries

	engines := []search.Engine{
		search.NewDuckDuckGoEngine(duckduckgo.NewClient(), retry),
		search.NewGoogleEngine(googleweb.NewClient(), retry),
		search.NewSerpAPIEngine(
			serpapi.NewClient(cfg.SerpAPI.Key, serpapi.WithBaseURL(cfg.SerpAPI.BaseURL)),
			cfg.SerpAPI.Key != "",
			retry,
		),
	}

	cascade := search.NewCascade(engines, search.CascadeConfig{
		TargetPerQuery: cfg.Search.TargetPerQuery,
		StopFraction:   cfg.Search.StopFraction,
		EngineDelay:    time.Duration(cfg.Search.EngineDelayMillis) * time.Millisecond,
		QueryDelay:     time.Duration(cfg.Search.QueryDelayMillis) * time.Millisecond,
	})

	var queryLLM anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		queryLLM = anthropicClient
	}
	queries := search.NewQueryBuilder(queryLLM, cfg.Anthropic.Model, cfg.Search.MaxQueries)

	fetcher := scrape.NewFetcher(scrape.Config{
		Timeout:       time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MinContentLen: cfg.Scrape.MinContentLen,
		MaxBodyBytes:  cfg.Scrape.MaxBodyBytes,
	})

	researcher := search.NewResearcher(cascade, queries, fetcher, queryLLM, search.ResearcherConfig{
		QualityThreshold:   cfg.Search.QualityThreshold,
		LowVolumeThreshold: cfg.Search.LowVolumeThreshold,
		WebsiteThreshold:   cfg.Search.WebsiteThreshold,
		TargetCategories:   cfg.Search.TargetCategories,
		LLMModel:           cfg.Anthropic.Model,
	})

	extractor := intel.NewExtractor(openaiClient, cfg.OpenAI.Model, intel.Limits{
		MaxProjects:      cfg.Intel.MaxProjects,
		MaxAnnouncements: cfg.Intel.MaxAnnouncements,
		MaxStrategic:     cfg.Intel.MaxStrategic,
		MaxCompetitors:   cfg.Intel.MaxCompetitors,
		MaxRoadmap:       cfg.Intel.MaxRoadmap,
		MaxLeadership:    cfg.Intel.MaxLeadership,
	})

	return &appEnv{
		store:      store,
		embedder:   embedder,
		selector:   match.NewSelector(embedder),
		researcher: researcher,
		extractor:  extractor,
		generator:  pitch.NewGenerator(openaiClient, cfg.OpenAI.Model),
		detector:   industry.NewDetector(anthropicClient, cfg.Anthropic.Model),
	}
}
