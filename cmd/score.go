package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelworks/sitescreen/internal/model"
	"github.com/parcelworks/sitescreen/internal/screening"
)

var (
	scoreSnapshotDir string
	scoreRulesPath   string
	scoreConcurrency int
	scoreFormat      string
	scoreOutput      string
	scoreSave        bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <sites.json>",
	Short: "Score and rank candidate sites",
	Long:  "Runs every site in the input file through the full screening sequence and prints the ranked results.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sites, err := readSites(args[0])
		if err != nil {
			return err
		}

		layerStore, err := loadLayerStore(scoreSnapshotDir)
		if err != nil {
			return eris.Wrap(err, "score: load layers")
		}
		rules, err := loadRuleBook(scoreRulesPath)
		if err != nil {
			return eris.Wrap(err, "score: load rules")
		}

		concurrency := scoreConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentSites
		}

		collector := screening.NewCollector()
		orch := screening.NewOrchestrator(layerStore, rules, collector)
		items, summary := orch.RunBatch(ctx, sites, concurrency)

		for _, item := range items {
			if item.Err != nil {
				fmt.Fprintf(os.Stderr, "site %s: %v\n", item.Site.ID, item.Err)
			}
		}

		results := screening.Results(items)
		screening.Rank(results)

		if scoreSave {
			if err := saveRun(ctx, sites, results, summary); err != nil {
				return err
			}
		}

		out := os.Stdout
		if scoreOutput != "" {
			f, err := os.Create(scoreOutput)
			if err != nil {
				return eris.Wrapf(err, "score: create %s", scoreOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return writeResults(out, results, scoreFormat)
	},
}

// saveRun persists the ranked batch. The recorded state and year are those
// shared by every site, or blank/zero for mixed batches.
func saveRun(ctx context.Context, sites []model.Site, results []*model.ScoringResult, summary screening.BatchSummary) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	state, year := batchIdentity(sites)
	version := ""
	if len(results) > 0 {
		version = results[0].RulesVersion
	}

	run, err := st.CreateRun(ctx, state, year, version)
	if err != nil {
		return eris.Wrap(err, "score: create run")
	}
	if err := st.SaveResults(ctx, run.ID, results); err != nil {
		return eris.Wrap(err, "score: save results")
	}
	if err := st.CompleteRun(ctx, run.ID, &summary); err != nil {
		return eris.Wrap(err, "score: complete run")
	}

	zap.L().Info("run saved", zap.String("run_id", run.ID), zap.Int("results", len(results)))
	return nil
}

func batchIdentity(sites []model.Site) (string, int) {
	state, year := sites[0].State, sites[0].ProgramYear
	for _, s := range sites[1:] {
		if s.State != state {
			state = ""
		}
		if s.ProgramYear != year {
			year = 0
		}
	}
	return state, year
}

func writeResults(out io.Writer, results []*model.ScoringResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "score: encode json")
	case "csv":
		return writeResultsCSV(out, results)
	case "table":
		writeResultsTable(out, results)
		return nil
	default:
		return eris.Errorf("unknown format %q (want table, csv, or json)", format)
	}
}

func writeResultsTable(out io.Writer, results []*model.ScoringResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tSITE\tTIER\t4PCT\t9PCT\tFEDERAL\tOPPORTUNITY\tFLAGS")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t----\t----\t-------\t-----------\t-----")

	for i, r := range results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%.1f\t%v\t%s\t%s\n",
			i+1, r.SiteID, r.RecommendationTier, r.Score4Pct, r.Score9Pct,
			r.FederalEligible, r.OpportunityCategory, resultFlags(r))
	}
	_ = w.Flush()
}

func resultFlags(r *model.ScoringResult) string {
	flags := ""
	if r.Competition.Eliminated9Pct {
		flags += "9pct-eliminated "
	}
	if r.ManualReview {
		flags += "manual-review "
	}
	if r.PartialResult {
		flags += "partial "
	}
	if flags == "" {
		return "-"
	}
	return flags[:len(flags)-1]
}

func writeResultsCSV(out io.Writer, results []*model.ScoringResult) error {
	w := csv.NewWriter(out)
	header := []string{
		"rank", "site_id", "tier", "score_4pct", "score_9pct",
		"federal_eligible", "opportunity_category", "amenity_total",
		"transit_points", "eliminated_9pct", "partial_result",
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "score: write csv header")
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.SiteID,
			string(r.RecommendationTier),
			strconv.FormatFloat(r.Score4Pct, 'f', 1, 64),
			strconv.FormatFloat(r.Score9Pct, 'f', 1, 64),
			strconv.FormatBool(r.FederalEligible),
			r.OpportunityCategory,
			strconv.FormatFloat(r.AmenityTotal, 'f', 1, 64),
			strconv.FormatFloat(r.TransitPoints, 'f', 1, 64),
			strconv.FormatBool(r.Competition.Eliminated9Pct),
			strconv.FormatBool(r.PartialResult),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "score: write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "score: flush csv")
}

func init() {
	scoreCmd.Flags().StringVar(&scoreSnapshotDir, "snapshot", "", "reference-layer snapshot directory (defaults to config)")
	scoreCmd.Flags().StringVar(&scoreRulesPath, "rules", "", "rule-table YAML file (defaults to config, then built-ins)")
	scoreCmd.Flags().IntVar(&scoreConcurrency, "concurrency", 0, "max concurrent sites (defaults to config)")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: table, csv, or json")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "write results to a file instead of stdout")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist the run and its results to the run store")

	rootCmd.AddCommand(scoreCmd)
}
