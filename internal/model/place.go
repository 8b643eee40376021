// Package model defines the survey data model: search zones, catalog
// queries, place candidates, and the persisted record shape.
package model

import (
	"strconv"
	"time"
)

// Zone is a named circular search region within the surveyed area.
type Zone struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	RadiusM int     `json:"radius_m"`
}

// MaxSearchRadiusM is the provider's maximum supported search radius.
const MaxSearchRadiusM = 50000

// Valid reports whether the zone satisfies the coordinate and radius bounds.
func (z Zone) Valid() bool {
	return z.Name != "" &&
		z.Lat >= -90 && z.Lat <= 90 &&
		z.Lon >= -180 && z.Lon <= 180 &&
		z.RadiusM >= 1 && z.RadiusM <= MaxSearchRadiusM
}

// Query is one search term and its taxonomy placement. RadiusM, when
// positive, overrides the zone radius for this keyword (used by
// community-style catalogs with tight per-keyword radii).
type Query struct {
	Keyword     string `json:"keyword"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	RadiusM     int    `json:"radius_m,omitempty"`
}

// Candidate is a raw, unenriched search hit from one result page. The type
// tags are captured at search time; the detail API does not return them
// reliably.
type Candidate struct {
	PlaceID string
	Name    string
	Types   []string
	Zone    string
	Keyword string
}

// Detail is the enriched record fetched once per unique place ID.
type Detail struct {
	PlaceID       string
	Name          string
	Address       string
	Vicinity      string
	Lat           float64
	Lon           float64
	HasLocation   bool
	Rating        *float64
	ReviewCount   *int
	Website       string
	Phone         string
	PriceLevel    *int
	IsOperational bool
	OpenNow       *bool
}

// Record is one persisted dataset row, uniquely keyed by PlaceID.
type Record struct {
	PlaceID         string   `json:"place_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	SubCategory     string   `json:"sub_category"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Address         string   `json:"address"`
	Vicinity        string   `json:"vicinity"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     int      `json:"review_count"`
	Website         string   `json:"website"`
	Phone           string   `json:"phone"`
	PriceLevel      string   `json:"price_level"`
	Types           string   `json:"types"`
	IsOperational   bool     `json:"is_operational"`
	SearchZone      string   `json:"search_zone"`
	SearchKeyword   string   `json:"search_keyword"`
	OpenNow         *bool    `json:"is_open_now,omitempty"`
	Timestamp       string   `json:"timestamp"`
	PopularityScore float64  `json:"popularity_score"`
	BufferRadiusM   *int     `json:"buffer_radius_m,omitempty"`
}

// Columns is the output column contract. Order and names are fixed;
// downstream GIS imports depend on them.
var Columns = []string{
	"place_id", "name", "category", "sub_category", "latitude", "longitude",
	"address", "vicinity", "rating", "review_count", "website", "phone",
	"price_level", "types", "is_operational", "search_zone", "search_keyword",
	"is_open_now", "timestamp", "popularity_score", "buffer_radius_m",
}

// Row renders the record as one CSV row in Columns order.
func (r Record) Row() []string {
	return []string{
		r.PlaceID,
		r.Name,
		r.Category,
		r.SubCategory,
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		r.Address,
		r.Vicinity,
		formatFloat(r.Rating),
		strconv.Itoa(r.ReviewCount),
		r.Website,
		r.Phone,
		r.PriceLevel,
		r.Types,
		strconv.FormatBool(r.IsOperational),
		r.SearchZone,
		r.SearchKeyword,
		formatBool(r.OpenNow),
		r.Timestamp,
		strconv.FormatFloat(r.PopularityScore, 'f', 2, 64),
		formatInt(r.BufferRadiusM),
	}
}

// Now formats a timestamp the way Record.Timestamp stores it.
func Now(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
