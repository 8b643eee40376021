package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailFields is the fixed field allow-list requested from the details
// endpoint. Requesting only these bounds the per-call cost.
var detailFields = []string{
	"place_id", "name", "formatted_address", "geometry",
	"rating", "user_ratings_total", "website",
	"opening_hours", "formatted_phone_number", "price_level",
	"business_status", "vicinity",
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type nearbyEnvelope struct {
	Results       []NearbyResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	params := url.Values{"key": {c.apiKey}}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("location", strconv.FormatFloat(req.Lat, 'f', -1, 64)+","+strconv.FormatFloat(req.Lon, 'f', -1, 64))
		params.Set("radius", strconv.Itoa(req.RadiusM))
		params.Set("keyword", req.Keyword)
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	var env nearbyEnvelope
	if err := c.get(ctx, "nearbysearch", "/nearbysearch/json", params, &env); err != nil {
		return nil, err
	}

	switch env.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &ProviderError{Op: "nearbysearch", Status: env.Status}
	}

	return &NearbyResponse{Results: env.Results, NextPageToken: env.NextPageToken}, nil
}

type detailEnvelope struct {
	Result       *DetailResponse `json:"result"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

func (c *httpClient) Details(ctx context.Context, req DetailRequest) (*DetailResponse, error) {
	params := url.Values{
		"key":      {c.apiKey},
		"place_id": {req.PlaceID},
		"fields":   {strings.Join(detailFields, ",")},
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	var env detailEnvelope
	if err := c.get(ctx, "details", "/details/json", params, &env); err != nil {
		return nil, err
	}

	if env.Status != "OK" || env.Result == nil {
		return nil, &ProviderError{Op: "details", Status: env.Status}
	}

	return env.Result, nil
}

func (c *httpClient) get(ctx context.Context, op, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "places: %s build request", op)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Op: op, Err: eris.Wrap(err, "read response")}
	}

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Op: op, HTTPStatus: resp.StatusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "places: %s unmarshal response", op)
	}

	return nil
}
