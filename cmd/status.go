package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pawmetric/survey-cli/internal/checkpoint"
)

var (
	statusCheckpoint string
	statusFormat     string
)

// checkpointStatus is the status command's view of a checkpoint.
type checkpointStatus struct {
	CompletedZones []string       `json:"completed_zones" yaml:"completed_zones"`
	Records        int            `json:"records" yaml:"records"`
	APICalls       int            `json:"api_calls" yaml:"api_calls"`
	CostUSD        float64        `json:"cost_usd" yaml:"cost_usd"`
	Stats          map[string]int `json:"stats" yaml:"stats"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Inspect the current crawl checkpoint",
	RunE: func(_ *cobra.Command, _ []string) error {
		path := statusCheckpoint
		if path == "" {
			path = cfg.Crawl.CheckpointPath
		}

		progress, err := checkpoint.NewFileStore(path).Load()
		if err != nil {
			return err
		}
		if progress == nil {
			fmt.Fprintln(os.Stderr, "No checkpoint found; no crawl in progress.")
			return nil
		}

		status := checkpointStatus{
			CompletedZones: progress.CompletedZones,
			Records:        len(progress.Records),
			APICalls:       progress.APICalls,
			CostUSD:        initCalculator().Actual(progress).TotalUSD,
			Stats:          progress.Stats,
		}
		return renderStatus(os.Stdout, status, statusFormat)
	},
}

func renderStatus(w io.Writer, status checkpointStatus, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		return yaml.NewEncoder(w).Encode(status)
	case "text":
		fmt.Fprintf(w, "Crawl in progress: %d zones done, %d records, %d API calls (~$%.2f)\n",
			len(status.CompletedZones), status.Records, status.APICalls, status.CostUSD)
		keys := make([]string, 0, len(status.Stats))
		for k := range status.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-24s %d\n", k, status.Stats[k])
		}
		return nil
	default:
		return eris.Errorf("unknown format %q (want text, json, or yaml)", format)
	}
}

func init() {
	statusCmd.Flags().StringVar(&statusCheckpoint, "checkpoint", "", "checkpoint path (default from config)")
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(statusCmd)
}
