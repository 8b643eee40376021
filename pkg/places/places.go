// Package places is a client for the Google Places Nearby Search and Place
// Details web service endpoints.
package places

import (
	"context"
	"fmt"
)

// NearbyRequest describes one Nearby Search page fetch. When PageToken is
// set the location parameters are ignored; the token encodes the original
// query.
type NearbyRequest struct {
	Lat       float64
	Lon       float64
	RadiusM   int
	Keyword   string
	Language  string
	PageToken string
}

// NearbyResult is one place summary from a search page. Types come from the
// search response; the details endpoint does not return them reliably.
type NearbyResult struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Types   []string `json:"types"`
}

// NearbyResponse is one page of search results plus an optional
// continuation token.
type NearbyResponse struct {
	Results       []NearbyResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
}

// DetailRequest fetches the enriched record for one place ID.
type DetailRequest struct {
	PlaceID  string
	Language string
}

// DetailResponse is the enriched detail record.
type DetailResponse struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Address        string   `json:"formatted_address"`
	Vicinity       string   `json:"vicinity"`
	Geometry       Geometry `json:"geometry"`
	Rating         *float64 `json:"rating"`
	ReviewCount    *int     `json:"user_ratings_total"`
	Website        string   `json:"website"`
	Phone          string   `json:"formatted_phone_number"`
	PriceLevel     *int     `json:"price_level"`
	BusinessStatus string   `json:"business_status"`
	OpeningHours   *Hours   `json:"opening_hours"`
}

// Geometry holds a place location.
type Geometry struct {
	Location *LatLng `json:"location"`
}

// LatLng is a WGS 84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Hours holds the opening-hours flag.
type Hours struct {
	OpenNow *bool `json:"open_now"`
}

// Client performs Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error)
	Details(ctx context.Context, req DetailRequest) (*DetailResponse, error)
}

// ProviderError is a failed provider call: either a non-200 transport
// response or a non-OK API status in the body.
type ProviderError struct {
	Op         string // "nearbysearch" or "details"
	Status     string // API status, e.g. "OVER_QUERY_LIMIT"
	HTTPStatus int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places: %s returned status %s", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("places: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("places: %s returned HTTP %d", e.Op, e.HTTPStatus)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying.
func (e *ProviderError) Transient() bool {
	switch e.Status {
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return true
	}
	switch e.HTTPStatus {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
