package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/industry"
	"github.com/evoke-group/presales-cli/internal/intel"
	"github.com/evoke-group/presales-cli/internal/match"
	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/internal/pitch"
	"github.com/evoke-group/presales-cli/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the presales assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env := newAppEnv(cfg)

		r := chi.NewRouter()
		r.Use(requestLogger)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/determine_industry", handleDetermineIndustry(env))
		r.Post("/portfolio_summary", handlePortfolioSummary(env))
		r.Post("/portfolio_summary_selected", handlePortfolioSummarySelected(env))
		r.Post("/refine_pitch", handleRefinePitch(env))
		r.Post("/download_pitch", handleDownloadPitch())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// requestLogger tags every request with a UUID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type summaryRequest struct {
	CompanyName    string   `json:"company_name"`
	CompanyWebsite string   `json:"company_website"`
	Industry       string   `json:"industry"`
	Technologies   []string `json:"technologies"`
	Focus          string   `json:"focus"`
	Top            int      `json:"top"`
	SelectedRows   []int    `json:"selected_rows"`

	// Intelligence is an optional bundle from a previous run; when usable
	// it replaces the research and extraction pass entirely.
	Intelligence json.RawMessage `json:"intelligence_data"`
}

// summaryResponse is the full pipeline output for one prospect.
type summaryResponse struct {
	Company      string                  `json:"company"`
	Industry     string                  `json:"industry,omitempty"`
	Candidates   []model.ScoredCandidate `json:"candidates"`
	Intelligence *model.Bundle           `json:"intelligence"`
	Pitch        *model.Pitch            `json:"pitch"`
	Quality      model.QualityMetrics    `json:"quality"`
}

func handleDetermineIndustry(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyName string `json:"company_name"`
			Hint        string `json:"hint"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CompanyName == "" {
			respondError(w, http.StatusBadRequest, "company_name is required")
			return
		}

		det, err := env.detector.Detect(r.Context(), req.CompanyName, req.Hint)
		if err != nil {
			// Detection is advisory; the caller proceeds without it.
			zap.L().Warn("industry detection failed, returning empty detection",
				zap.String("company", req.CompanyName),
				zap.Error(err),
			)
			respondJSON(w, http.StatusOK, &industry.Detection{})
			return
		}
		respondJSON(w, http.StatusOK, det)
	}
}

func handlePortfolioSummary(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeSummaryRequest(w, r)
		if !ok {
			return
		}

		records, err := env.store.Load()
		if err != nil {
			zap.L().Error("portfolio load failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "portfolio load failed")
			return
		}

		top := req.Top
		if top <= 0 {
			top = 5
		}
		candidates, err := env.selector.Select(r.Context(), records, match.Criteria{
			Industry:     req.Industry,
			Technologies: req.Technologies,
			Focus:        req.Focus,
		}, top)
		if err != nil {
			zap.L().Error("candidate selection failed", zap.String("company", req.CompanyName), zap.Error(err))
			respondError(w, http.StatusBadGateway, "candidate selection failed")
			return
		}

		runSummary(env, w, r, req, candidates)
	}
}

func handlePortfolioSummarySelected(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeSummaryRequest(w, r)
		if !ok {
			return
		}
		if len(req.SelectedRows) == 0 {
			respondError(w, http.StatusBadRequest, "selected_rows is required")
			return
		}

		records, err := env.store.Load()
		if err != nil {
			zap.L().Error("portfolio load failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "portfolio load failed")
			return
		}

		// Caller picked the records; carry them through unscored.
		var candidates []model.ScoredCandidate
		for _, row := range req.SelectedRows {
			if row < 0 || row >= len(records) {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("row %d out of range", row))
				return
			}
			candidates = append(candidates, model.ScoredCandidate{
				Record:    records[row],
				Reasoning: []string{"selected manually"},
			})
		}

		runSummary(env, w, r, req, candidates)
	}
}

// runSummary performs the research, extraction, and pitch steps shared by
// both summary endpoints. A usable caller-supplied bundle skips the
// research and extraction pass.
func runSummary(env *appEnv, w http.ResponseWriter, r *http.Request, req summaryRequest, candidates []model.ScoredCandidate) {
	var quality model.QualityMetrics

	bundle := providedIntelligence(req.Intelligence)
	if bundle != nil {
		zap.L().Info("reusing provided intelligence", zap.String("company", req.CompanyName))
	} else {
		report, err := env.researcher.Research(r.Context(), search.Request{
			Company:  req.CompanyName,
			Industry: req.Industry,
			Focus:    req.Focus,
			Website:  req.CompanyWebsite,
		})
		if err != nil {
			zap.L().Error("research failed", zap.String("company", req.CompanyName), zap.Error(err))
			respondError(w, http.StatusBadGateway, "research failed")
			return
		}
		bundle = env.extractor.Extract(r.Context(), report)
		quality = report.Quality
	}

	p, err := env.generator.Generate(r.Context(), req.CompanyName, bundle, candidates)
	if err != nil {
		zap.L().Error("pitch generation failed", zap.String("company", req.CompanyName), zap.Error(err))
		respondError(w, http.StatusBadGateway, "pitch generation failed")
		return
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		Company:      req.CompanyName,
		Industry:     req.Industry,
		Candidates:   candidates,
		Intelligence: bundle,
		Pitch:        p,
		Quality:      quality,
	})
}

// providedIntelligence decodes a caller-supplied bundle, upgrading legacy
// payloads. Absent, malformed, or error-marked payloads return nil so the
// pipeline falls back to fresh research.
func providedIntelligence(raw json.RawMessage) *model.Bundle {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	bundle, err := intel.DecodeStored(raw)
	if err != nil {
		zap.L().Warn("provided intelligence unusable, researching fresh", zap.Error(err))
		return nil
	}
	if bundle.Error != "" {
		return nil
	}
	return bundle
}

func handleRefinePitch(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyName string       `json:"company_name"`
			Pitch       *model.Pitch `json:"pitch"`
			Feedback    string       `json:"feedback"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Pitch == nil || req.Feedback == "" {
			respondError(w, http.StatusBadRequest, "pitch and feedback are required")
			return
		}

		refined, err := env.generator.Refine(r.Context(), req.Pitch, req.Feedback)
		if err != nil {
			zap.L().Error("pitch refinement failed", zap.String("company", req.CompanyName), zap.Error(err))
			respondError(w, http.StatusBadGateway, "pitch refinement failed")
			return
		}
		respondJSON(w, http.StatusOK, refined)
	}
}

func handleDownloadPitch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyName string       `json:"company_name"`
			Pitch       *model.Pitch `json:"pitch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CompanyName == "" || req.Pitch == nil {
			respondError(w, http.StatusBadRequest, "company_name and pitch are required")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slugify(req.CompanyName)+"_pitch.txt"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pitch.ExportText(req.CompanyName, req.Pitch)))
	}
}

func decodeSummaryRequest(w http.ResponseWriter, r *http.Request) (summaryRequest, bool) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.CompanyName == "" {
		respondError(w, http.StatusBadRequest, "company_name is required")
		return req, false
	}
	return req, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
