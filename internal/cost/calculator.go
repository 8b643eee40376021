// Package cost estimates and reports provider API spend for a crawl.
package cost

import (
	"math"

	"github.com/pawmetric/survey-cli/internal/model"
)

// Rates holds per-call provider pricing in USD.
type Rates struct {
	NearbySearch float64 `yaml:"nearby_search" mapstructure:"nearby_search"`
	PlaceDetails float64 `yaml:"place_details" mapstructure:"place_details"`
}

// DefaultRates returns the provider's published per-call pricing.
func DefaultRates() Rates {
	return Rates{
		NearbySearch: 0.032,
		PlaceDetails: 0.017,
	}
}

// Estimate is a pre-crawl cost projection.
type Estimate struct {
	Zones     int     `json:"zones"`
	Queries   int     `json:"queries"`
	Searches  int     `json:"searches"`
	Details   int     `json:"details"`
	SearchUSD float64 `json:"search_usd"`
	DetailUSD float64 `json:"detail_usd"`
	TotalUSD  float64 `json:"total_usd"`
}

// Calculator computes costs for provider API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Project computes the worst-case pre-crawl estimate: every (zone, query)
// pair paginated to maxPages, plus expectedDetails detail fetches. Pass the
// expected unique-place count when known; a crawl re-run over familiar ground
// fetches far fewer details than a cold one.
func (c *Calculator) Project(zones, queries, maxPages, expectedDetails int) Estimate {
	searches := zones * queries * maxPages
	return Estimate{
		Zones:     zones,
		Queries:   queries,
		Searches:  searches,
		Details:   expectedDetails,
		SearchUSD: round2(float64(searches) * c.rates.NearbySearch),
		DetailUSD: round2(float64(expectedDetails) * c.rates.PlaceDetails),
		TotalUSD:  round2(float64(searches)*c.rates.NearbySearch + float64(expectedDetails)*c.rates.PlaceDetails),
	}
}

// Actual computes the spend of a finished (or interrupted) crawl from its
// progress counters. Detail calls are one per unique record plus the failed
// attempts; everything else in APICalls was a search page.
func (c *Calculator) Actual(p *model.Progress) Estimate {
	details := len(p.Records) + p.Stats["detail_failures"]
	searches := p.APICalls - details
	if searches < 0 {
		searches = 0
	}
	return Estimate{
		Searches:  searches,
		Details:   details,
		SearchUSD: round2(float64(searches) * c.rates.NearbySearch),
		DetailUSD: round2(float64(details) * c.rates.PlaceDetails),
		TotalUSD:  round2(float64(searches)*c.rates.NearbySearch + float64(details)*c.rates.PlaceDetails),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
