package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/search"
)

var (
	intelCompany  string
	intelIndustry string
	intelFocus    string
	intelWebsite  string
	intelOut      string
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Research a company and extract structured intelligence",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := newAppEnv(cfg)

		report, err := env.researcher.Research(ctx, search.Request{
			Company:  intelCompany,
			Industry: intelIndustry,
			Focus:    intelFocus,
			Website:  intelWebsite,
		})
		if err != nil {
			return eris.Wrap(err, "research run")
		}

		bundle := env.extractor.Extract(ctx, report)
		if bundle.Error != "" {
			zap.L().Warn("extraction degraded",
				zap.String("company", intelCompany),
				zap.String("error", bundle.Error),
			)
		}

		out := os.Stdout
		if intelOut != "" {
			f, err := os.Create(intelOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	},
}

func init() {
	intelCmd.Flags().StringVar(&intelCompany, "company", "", "prospect company name (required)")
	intelCmd.Flags().StringVar(&intelIndustry, "industry", "", "prospect industry")
	intelCmd.Flags().StringVar(&intelFocus, "focus", "", "free-text focus area for query generation")
	intelCmd.Flags().StringVar(&intelWebsite, "website", "", "prospect website to scrape directly")
	intelCmd.Flags().StringVar(&intelOut, "out", "", "write the bundle to a file instead of stdout")
	_ = intelCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(intelCmd)
}
