package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/evoke-group/presales-cli/internal/search"
)

var (
	searchCompany  string
	searchIndustry string
	searchFocus    string
	searchWebsite  string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run web research for a prospect company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := newAppEnv(cfg)

		report, err := env.researcher.Research(ctx, search.Request{
			Company:  searchCompany,
			Industry: searchIndustry,
			Focus:    searchFocus,
			Website:  searchWebsite,
		})
		if err != nil {
			return eris.Wrap(err, "research run")
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Println(search.FormatReport(report))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCompany, "company", "", "prospect company name (required)")
	searchCmd.Flags().StringVar(&searchIndustry, "industry", "", "prospect industry")
	searchCmd.Flags().StringVar(&searchFocus, "focus", "", "free-text focus area for query generation")
	searchCmd.Flags().StringVar(&searchWebsite, "website", "", "prospect website to scrape directly")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the report as JSON")
	_ = searchCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(searchCmd)
}
