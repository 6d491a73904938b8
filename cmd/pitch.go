package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/match"
	"github.com/evoke-group/presales-cli/internal/pitch"
	"github.com/evoke-group/presales-cli/internal/search"
)

var (
	pitchCompany  string
	pitchIndustry string
	pitchTech     string
	pitchFocus    string
	pitchWebsite  string
	pitchTop      int
	pitchOut      string
)

var pitchCmd = &cobra.Command{
	Use:   "pitch",
	Short: "Run the full pipeline and synthesize a pitch for a prospect",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := newAppEnv(cfg)

		industryName := pitchIndustry
		if industryName == "" {
			det, err := env.detector.Detect(ctx, pitchCompany, "")
			if err != nil {
				zap.L().Warn("industry detection failed, continuing without",
					zap.String("company", pitchCompany),
					zap.Error(err),
				)
			} else {
				industryName = det.Industry
				zap.L().Info("industry detected",
					zap.String("company", pitchCompany),
					zap.String("industry", det.Industry),
					zap.Float64("confidence", det.Confidence),
				)
			}
		}

		report, err := env.researcher.Research(ctx, search.Request{
			Company:  pitchCompany,
			Industry: industryName,
			Focus:    pitchFocus,
			Website:  pitchWebsite,
		})
		if err != nil {
			return eris.Wrap(err, "research run")
		}
		bundle := env.extractor.Extract(ctx, report)

		records, err := env.store.Load()
		if err != nil {
			return eris.Wrap(err, "load portfolio")
		}
		candidates, err := env.selector.Select(ctx, records, match.Criteria{
			Industry:     industryName,
			Technologies: splitCSV(pitchTech),
			Focus:        pitchFocus,
		}, pitchTop)
		if err != nil {
			return eris.Wrap(err, "select candidates")
		}

		p, err := env.generator.Generate(ctx, pitchCompany, bundle, candidates)
		if err != nil {
			return eris.Wrap(err, "generate pitch")
		}

		if pitchOut != "" {
			if err := os.WriteFile(pitchOut, []byte(pitch.ExportText(pitchCompany, p)), 0o644); err != nil {
				return eris.Wrap(err, "write pitch file")
			}
			zap.L().Info("pitch written", zap.String("path", pitchOut))
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	pitchCmd.Flags().StringVar(&pitchCompany, "company", "", "prospect company name (required)")
	pitchCmd.Flags().StringVar(&pitchIndustry, "industry", "", "prospect industry (detected when omitted)")
	pitchCmd.Flags().StringVar(&pitchTech, "technologies", "", "comma-separated technologies")
	pitchCmd.Flags().StringVar(&pitchFocus, "focus", "", "free-text focus description")
	pitchCmd.Flags().StringVar(&pitchWebsite, "website", "", "prospect website to scrape directly")
	pitchCmd.Flags().IntVar(&pitchTop, "top", 5, "number of portfolio candidates to use")
	pitchCmd.Flags().StringVar(&pitchOut, "out", "", "write the pitch as text to a file")
	rootCmd.AddCommand(pitchCmd)
}
