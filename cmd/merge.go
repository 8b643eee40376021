package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pawmetric/survey-cli/internal/dataset"
	"github.com/pawmetric/survey-cli/internal/model"
	"github.com/pawmetric/survey-cli/internal/reconcile"
)

var mergeOutputPath string

var mergeCmd = &cobra.Command{
	Use:   "merge <primary.csv> <secondary.csv> [more.csv...]",
	Short: "Reconcile datasets into one",
	Long:  "Merges two or more crawl datasets. Earlier files win on overlapping place IDs; a duplicate surviving the merge aborts with an integrity error.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		datasets := make([][]model.Record, 0, len(args))
		for _, path := range args {
			records, err := dataset.Read(path)
			if err != nil {
				return err
			}
			datasets = append(datasets, records)
		}

		merged, report, err := reconcile.MergeAll(datasets...)
		if err != nil {
			return err
		}

		if err := dataset.Write(mergeOutputPath, merged); err != nil {
			return err
		}

		fmt.Printf("Merged %d datasets into %s\n", len(datasets), mergeOutputPath)
		fmt.Printf("  Overlap dropped: %d\n", report.OverlapCount)
		fmt.Printf("  Final records:   %d (%d operational)\n", report.FinalCount, report.Operational)

		categories := make([]string, 0, len(report.ByCategory))
		for c := range report.ByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Printf("    %-24s %d\n", c, report.ByCategory[c])
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeOutputPath, "output", "merged_dataset.csv", "merged dataset path")
	rootCmd.AddCommand(mergeCmd)
}
