package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmetric/survey-cli/internal/checkpoint"
	"github.com/pawmetric/survey-cli/internal/crawl"
	"github.com/pawmetric/survey-cli/internal/dataset"
	"github.com/pawmetric/survey-cli/internal/model"
	"github.com/pawmetric/survey-cli/pkg/places"
)

var (
	crawlZonesPath   string
	crawlQueriesPath string
	crawlOutputPath  string
	crawlCheckpoint  string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run or resume a grid crawl",
	Long:  "Searches every zone x keyword pair, deduplicates by place ID, and writes the dataset. An interrupted crawl resumes from its checkpoint on the next invocation.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		zones, queries, err := loadCatalog(crawlZonesPath, crawlQueriesPath)
		if err != nil {
			return err
		}

		outputPath := crawlOutputPath
		if outputPath == "" {
			outputPath = cfg.Crawl.OutputPath
		}
		checkpointPath := crawlCheckpoint
		if checkpointPath == "" {
			checkpointPath = cfg.Crawl.CheckpointPath
		}

		client := places.NewClient(cfg.Google.Key, places.WithBaseURL(cfg.Google.BaseURL))
		searcher := crawl.NewSearcher(client, crawl.SearcherOpts{
			RatePerSec: cfg.Google.RatePerSec,
			Language:   cfg.Google.Language,
			MaxPages:   cfg.Crawl.MaxPages,
			TokenDelay: time.Duration(cfg.Crawl.TokenDelaySecs) * time.Second,
		})
		checkpoints := checkpoint.NewFileStore(checkpointPath)
		engine := crawl.NewEngine(searcher, checkpoints, crawl.EngineOpts{
			DetailConcurrency: cfg.Crawl.DetailConcurrency,
		})

		zap.L().Info("starting crawl",
			zap.Int("zones", len(zones)),
			zap.Int("queries", len(queries)),
			zap.String("output", outputPath),
		)

		started := time.Now()
		progress, err := engine.Run(ctx, zones, queries)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				zap.L().Warn("crawl interrupted; checkpoint kept, re-run to resume",
					zap.Int("completed_zones", len(progress.CompletedZones)),
					zap.Int("records", len(progress.Records)),
				)
			}
			return err
		}

		records := collectRecords(progress)
		if err := dataset.Write(outputPath, records); err != nil {
			return err
		}

		finished := time.Now()
		calc := initCalculator()
		actual := calc.Actual(progress)

		archiveRun(ctx, model.Run{
			ID:         uuid.New().String(),
			StartedAt:  started,
			FinishedAt: finished,
			Zones:      len(zones),
			Queries:    len(queries),
			Records:    len(records),
			APICalls:   progress.APICalls,
			CostUSD:    actual.TotalUSD,
			OutputPath: outputPath,
		}, records)

		if err := checkpoints.Clear(); err != nil {
			return eris.Wrap(err, "clear checkpoint")
		}

		printCrawlSummary(progress, outputPath, actual.TotalUSD, finished.Sub(started))
		return nil
	},
}

// collectRecords flattens the progress map; dataset.Write sorts.
func collectRecords(progress *model.Progress) []model.Record {
	records := make([]model.Record, 0, len(progress.Records))
	for _, r := range progress.Records {
		records = append(records, r)
	}
	return records
}

// archiveRun stores the finished run. The dataset on disk is the deliverable,
// so archive failures only warn.
func archiveRun(ctx context.Context, run model.Run, records []model.Record) {
	st, err := initStore(ctx)
	if err != nil {
		zap.L().Warn("run archive unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.CreateRun(ctx, run); err != nil {
		zap.L().Warn("archive run", zap.Error(err))
		return
	}
	if err := st.SaveRecords(ctx, run.ID, records); err != nil {
		zap.L().Warn("archive records", zap.Error(err))
		return
	}
	zap.L().Info("run archived", zap.String("run_id", run.ID))
}

func printCrawlSummary(progress *model.Progress, outputPath string, costUSD float64, elapsed time.Duration) {
	fmt.Printf("\nCrawl complete in %s\n", elapsed.Round(time.Second))
	fmt.Printf("  Records:   %d\n", len(progress.Records))
	fmt.Printf("  Zones:     %d\n", len(progress.CompletedZones))
	fmt.Printf("  API calls: %d (~$%.2f)\n", progress.APICalls, costUSD)
	fmt.Printf("  Output:    %s\n", outputPath)

	if len(progress.Stats) > 0 {
		keys := make([]string, 0, len(progress.Stats))
		for k := range progress.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(os.Stdout, "  Stats:")
		for _, k := range keys {
			fmt.Printf("    %-24s %d\n", k, progress.Stats[k])
		}
	}
}

func init() {
	crawlCmd.Flags().StringVar(&crawlZonesPath, "zones", "", "zone catalog (CSV or XLSX)")
	crawlCmd.Flags().StringVar(&crawlQueriesPath, "queries", "", "query catalog (CSV or XLSX)")
	crawlCmd.Flags().StringVar(&crawlOutputPath, "output", "", "output dataset path (default from config)")
	crawlCmd.Flags().StringVar(&crawlCheckpoint, "checkpoint", "", "checkpoint path (default from config)")
	_ = crawlCmd.MarkFlagRequired("zones")
	_ = crawlCmd.MarkFlagRequired("queries")
	rootCmd.AddCommand(crawlCmd)
}
