package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/evoke-group/presales-cli/internal/match"
)

var (
	matchIndustry string
	matchTech     string
	matchFocus    string
	matchTop      int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank portfolio engagements against a prospect profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := newAppEnv(cfg)

		records, err := env.store.Load()
		if err != nil {
			return eris.Wrap(err, "load portfolio")
		}

		candidates, err := env.selector.Select(ctx, records, match.Criteria{
			Industry:     matchIndustry,
			Technologies: splitCSV(matchTech),
			Focus:        matchFocus,
		}, matchTop)
		if err != nil {
			return eris.Wrap(err, "select candidates")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	},
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	matchCmd.Flags().StringVar(&matchIndustry, "industry", "", "prospect industry")
	matchCmd.Flags().StringVar(&matchTech, "technologies", "", "comma-separated technologies")
	matchCmd.Flags().StringVar(&matchFocus, "focus", "", "free-text focus description")
	matchCmd.Flags().IntVar(&matchTop, "top", 5, "number of candidates to return")
	rootCmd.AddCommand(matchCmd)
}
