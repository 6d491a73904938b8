package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evoke-group/presales-cli/internal/search"
)

var (
	batchFile   string
	batchOutDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Research and extract intelligence for a list of companies",
	Long:  "Reads one company name per line, runs the research and extraction pipeline for each with bounded concurrency, and writes one intelligence JSON file per company.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := newAppEnv(cfg)

		companies, err := readCompanyList(batchFile)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.New("batch: no companies in input file")
		}

		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return eris.Wrap(err, "create output dir")
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentClients)

		for _, company := range companies {
			company := company
			g.Go(func() error {
				report, err := env.researcher.Research(ctx, search.Request{Company: company})
				if err != nil {
					// One failed company should not sink the batch
					// unless the context itself died.
					if ctx.Err() != nil {
						return err
					}
					zap.L().Error("batch research failed",
						zap.String("company", company),
						zap.Error(err),
					)
					return nil
				}

				bundle := env.extractor.Extract(ctx, report)

				data, err := json.MarshalIndent(bundle, "", "  ")
				if err != nil {
					return eris.Wrapf(err, "marshal bundle for %s", company)
				}

				outPath := filepath.Join(batchOutDir, slugify(company)+".json")
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return eris.Wrapf(err, "write bundle for %s", company)
				}

				zap.L().Info("batch company complete",
					zap.String("company", company),
					zap.String("path", outPath),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch run")
		}

		zap.L().Info("batch complete", zap.Int("companies", len(companies)))
		return nil
	},
}

// readCompanyList reads one company name per line, skipping blanks and
// lines starting with #.
func readCompanyList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open company list")
	}
	defer func() { _ = f.Close() }()

	var companies []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		companies = append(companies, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read company list")
	}
	return companies, nil
}

// slugify converts a company name to a safe file name.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if s := b.String(); s != "" && !strings.HasSuffix(s, "_") {
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to company list, one name per line (required)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "intel_out", "directory for per-company intelligence files")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
