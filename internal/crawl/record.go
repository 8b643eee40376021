package crawl

import (
	"strings"
	"time"

	"github.com/pawmetric/survey-cli/internal/model"
)

// competitorBufferM maps competitor sub-categories to fixed visualization
// buffer radii in meters. Full-service formats get the largest impact zone.
var competitorBufferM = map[string]int{
	"Clinic+Grooming":    3000,
	"Emergency_Hospital": 3000,
	"Clinic_Only":        2000,
	"Grooming_Only":      1500,
	"Pet_Hotel":          1500,
}

// BuildRecord assembles a dataset row from an enriched detail, the refined
// taxonomy placement, and the search metadata. Pure assembly; no lookups.
func BuildRecord(detail model.Detail, category, subCategory, zoneName, keyword string, radiusHintM int, types []string, ts time.Time) model.Record {
	r := model.Record{
		PlaceID:       detail.PlaceID,
		Name:          detail.Name,
		Category:      category,
		SubCategory:   subCategory,
		Address:       detail.Address,
		Vicinity:      detail.Vicinity,
		Rating:        detail.Rating,
		Website:       detail.Website,
		Phone:         detail.Phone,
		PriceLevel:    priceSymbols(detail.PriceLevel),
		Types:         strings.Join(types, ", "),
		IsOperational: detail.IsOperational,
		SearchZone:    zoneName,
		SearchKeyword: keyword,
		OpenNow:       detail.OpenNow,
		Timestamp:     model.Now(ts),
	}

	if detail.HasLocation {
		lat, lon := detail.Lat, detail.Lon
		r.Latitude = &lat
		r.Longitude = &lon
	}
	if detail.ReviewCount != nil {
		r.ReviewCount = *detail.ReviewCount
	}
	r.PopularityScore = Popularity(detail.Rating, detail.ReviewCount)

	if buf, ok := competitorBufferM[subCategory]; ok && category == "Competitor" {
		r.BufferRadiusM = &buf
	} else if radiusHintM > 0 {
		r.BufferRadiusM = &radiusHintM
	}

	return r
}

// priceSymbols renders an ordinal price level as repeated currency markers,
// e.g. level 2 becomes "$$".
func priceSymbols(level *int) string {
	if level == nil || *level <= 0 {
		return ""
	}
	return strings.Repeat("$", *level)
}
