package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"propmerge/adapters/excel"
	"propmerge/adapters/jsonfile"
	"propmerge/adapters/postgres"
	"propmerge/domain/market"
	"propmerge/internal/config"
	"propmerge/internal/logging"
	"propmerge/internal/merge"
	"propmerge/internal/report"
	"propmerge/internal/testkit"
	"propmerge/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "propmerge",
		Short: "Merge multi-target property prediction results into one analysis",
	}

	rootCmd.AddCommand(
		newMergeCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMergeCmd() *cobra.Command {
	var rosterPath string
	var fromDatabase bool
	var responsesPath string
	var outDir string
	var htmlOut bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge prediction responses against a property roster",
		Long: `Merge per-target prediction responses against a property roster.

The roster comes from an .xlsx/.csv file or, with --database, from the
properties table at DATABASE_URL.

Example: propmerge merge --roster properties.xlsx --responses responses.json --out ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromEnv()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if rosterPath == "" {
				rosterPath = cfg.Paths.PropertiesFile
			}
			if outDir == "" {
				outDir = cfg.Paths.ReportDir
			}

			var source ports.PropertySource
			switch {
			case fromDatabase:
				db, err := postgres.Connect(cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				source = postgres.NewPropertyRepository(db)
			case rosterPath != "":
				source = excel.NewPropertyReader(rosterPath, logging.Component(logger, "excel"))
			default:
				return fmt.Errorf("either --roster or --database is required")
			}

			props, err := source.ListProperties(cmd.Context())
			if err != nil {
				return err
			}

			reader := jsonfile.NewResponseReader(responsesPath)
			responses, err := reader.FetchResponses(cmd.Context())
			if err != nil {
				return err
			}

			merger := merge.NewMerger(merge.Options{
				FSAUniverseSize: cfg.Merge.FSAUniverseSize,
				Risk: merge.RiskThresholds{
					PriceVolatilityCV: cfg.Merge.PriceVolatilityCV,
					SlowMarketDays:    cfg.Merge.SlowMarketDays,
					MinCompleteness:   cfg.Merge.MinCompleteness,
				},
			}, logging.Component(logger, "merge"))

			result, err := merger.Merge(cmd.Context(), responses, props, reader.AnalysisID())
			if err != nil {
				return err
			}
			return writeReports(result, outDir, htmlOut)
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "property roster file (.xlsx or .csv), default PROPERTIES_FILE")
	cmd.Flags().BoolVar(&fromDatabase, "database", false, "load the roster from DATABASE_URL instead of a file")
	cmd.Flags().StringVar(&responsesPath, "responses", "", "prediction responses JSON file")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory, default REPORT_DIR")
	cmd.Flags().BoolVar(&htmlOut, "html", false, "also write an HTML report")
	_ = cmd.MarkFlagRequired("responses")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var count int
	var parts int
	var outDir string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a merge over seeded synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromEnv()

			gen := testkit.NewGenerator(seed)
			props := gen.Properties(count)
			responses := gen.Responses(props, parts)

			merger := merge.NewMerger(merge.DefaultOptions(), logging.Component(logger, "merge"))
			result, err := merger.Merge(cmd.Context(), responses, props, "")
			if err != nil {
				return err
			}
			return writeReports(result, outDir, true)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().IntVar(&count, "properties", 120, "number of synthetic properties")
	cmd.Flags().IntVar(&parts, "responses", 3, "number of synthetic responses")
	cmd.Flags().StringVar(&outDir, "out", "./reports", "output directory")

	return cmd
}

func writeReports(result *market.MergedAnalysisResult, outDir string, html bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	renderer := report.NewRenderer()
	base := filepath.Join(outDir, result.AnalysisID.String())

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(base+".json", resultJSON, 0o644); err != nil {
		return err
	}

	md, err := renderer.RenderMarkdown(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".md", []byte(md), 0o644); err != nil {
		return err
	}

	if html {
		page, err := renderer.RenderHTML(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".html", page, 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("analysis %s written to %s\n", result.AnalysisID, outDir)
	return nil
}
