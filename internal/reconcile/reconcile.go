// Package reconcile merges independently produced datasets while preserving
// the global place-identifier uniqueness invariant.
package reconcile

import (
	"fmt"

	"github.com/pawmetric/survey-cli/internal/dataset"
	"github.com/pawmetric/survey-cli/internal/model"
)

// IntegrityError reports a duplicate place ID surviving the merge. It marks a
// dedup bug upstream, never a recoverable input condition.
type IntegrityError struct {
	PlaceID string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("reconcile: duplicate place_id %q survived merge", e.PlaceID)
}

// Report summarizes one merge.
type Report struct {
	PrimaryCount   int            `json:"primary_count"`
	SecondaryCount int            `json:"secondary_count"`
	OverlapCount   int            `json:"overlap_count"`
	FinalCount     int            `json:"final_count"`
	ByCategory     map[string]int `json:"by_category"`
	Operational    int            `json:"operational"`
}

// Merge combines two datasets. When both carry the same place ID the primary
// record wins and the secondary one is dropped as overlap. The result is
// sorted by (category, sub_category, popularity_score descending) and checked
// for surviving duplicates.
func Merge(primary, secondary []model.Record) ([]model.Record, *Report, error) {
	report := &Report{
		PrimaryCount:   len(primary),
		SecondaryCount: len(secondary),
		ByCategory:     make(map[string]int),
	}

	seen := make(map[string]struct{}, len(primary))
	merged := make([]model.Record, 0, len(primary)+len(secondary))

	for _, r := range primary {
		if _, dup := seen[r.PlaceID]; dup {
			return nil, report, &IntegrityError{PlaceID: r.PlaceID}
		}
		seen[r.PlaceID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range secondary {
		if _, dup := seen[r.PlaceID]; dup {
			report.OverlapCount++
			continue
		}
		seen[r.PlaceID] = struct{}{}
		merged = append(merged, r)
	}

	dataset.Sort(merged)

	report.FinalCount = len(merged)
	for _, r := range merged {
		report.ByCategory[r.Category]++
		if r.IsOperational {
			report.Operational++
		}
	}
	return merged, report, nil
}

// MergeAll folds a sequence of datasets left to right. Earlier datasets take
// precedence on overlapping place IDs.
func MergeAll(datasets ...[]model.Record) ([]model.Record, *Report, error) {
	if len(datasets) == 0 {
		return nil, &Report{ByCategory: make(map[string]int)}, nil
	}

	merged := datasets[0]
	var (
		report *Report
		err    error
	)
	for _, next := range datasets[1:] {
		merged, report, err = Merge(merged, next)
		if err != nil {
			return nil, report, err
		}
	}
	if report == nil {
		return Merge(merged, nil)
	}
	return merged, report, nil
}
