package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pawmetric/survey-cli/internal/catalog"
	"github.com/pawmetric/survey-cli/internal/geo"
)

var coverageZonesPath string

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report zone overlap and covered area for a catalog",
	RunE: func(_ *cobra.Command, _ []string) error {
		zones, err := catalog.Zones(coverageZonesPath)
		if err != nil {
			return err
		}

		formatCoverage(os.Stdout, geo.Analyze(zones))
		return nil
	},
}

func formatCoverage(w io.Writer, report geo.Report) {
	fmt.Fprintf(w, "Coverage for %d zones: %.1f km2 total (largest %.1f km2), centered near (%.4f, %.4f)\n",
		report.Zones, report.TotalKM2, report.LargestKM2, report.CentroidLat, report.CentroidLon)

	if len(report.Overlaps) == 0 {
		fmt.Fprintln(w, "No overlapping zones.")
		return
	}

	fmt.Fprintf(w, "%d overlapping pairs (expected near zone seams; dedup absorbs the duplicate hits):\n", len(report.Overlaps))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ZONE_A\tZONE_B\tCENTER_DIST_M\tOVERLAP_M")
	for _, o := range report.Overlaps {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\n", o.ZoneA, o.ZoneB, o.DistanceM, o.OverlapM)
	}
	_ = tw.Flush()
}

func init() {
	coverageCmd.Flags().StringVar(&coverageZonesPath, "zones", "", "zone catalog (CSV or XLSX)")
	_ = coverageCmd.MarkFlagRequired("zones")
	rootCmd.AddCommand(coverageCmd)
}
