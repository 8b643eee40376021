package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	estimateZonesPath   string
	estimateQueriesPath string
	estimateDetails     int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate API cost of a crawl before running it",
	RunE: func(_ *cobra.Command, _ []string) error {
		zones, queries, err := loadCatalog(estimateZonesPath, estimateQueriesPath)
		if err != nil {
			return err
		}

		expected := estimateDetails
		if expected <= 0 {
			// Rough prior: a metro-area sweep lands near 30 unique places
			// per zone after dedup.
			expected = len(zones) * 30
		}

		est := initCalculator().Project(len(zones), len(queries), cfg.Crawl.MaxPages, expected)

		fmt.Printf("Worst-case crawl cost for %d zones x %d queries (up to %d pages each):\n",
			est.Zones, est.Queries, cfg.Crawl.MaxPages)
		fmt.Printf("  Nearby searches: %6d  $%8.2f\n", est.Searches, est.SearchUSD)
		fmt.Printf("  Detail fetches:  %6d  $%8.2f  (expected uniques)\n", est.Details, est.DetailUSD)
		fmt.Printf("  Total:                   $%8.2f\n", est.TotalUSD)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateZonesPath, "zones", "", "zone catalog (CSV or XLSX)")
	estimateCmd.Flags().StringVar(&estimateQueriesPath, "queries", "", "query catalog (CSV or XLSX)")
	estimateCmd.Flags().IntVar(&estimateDetails, "expected-details", 0, "expected unique places (default 30 per zone)")
	_ = estimateCmd.MarkFlagRequired("zones")
	_ = estimateCmd.MarkFlagRequired("queries")
	rootCmd.AddCommand(estimateCmd)
}
