package model

import "time"

// Run is one archived crawl: its inputs, counters, and cost. Stored after a
// crawl completes so past surveys stay queryable.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Zones      int       `json:"zones"`
	Queries    int       `json:"queries"`
	Records    int       `json:"records"`
	APICalls   int       `json:"api_calls"`
	CostUSD    float64   `json:"cost_usd"`
	OutputPath string    `json:"output_path"`
}
