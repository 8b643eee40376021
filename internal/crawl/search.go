package crawl

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/pawmetric/survey-cli/internal/model"
	"github.com/pawmetric/survey-cli/internal/resilience"
	"github.com/pawmetric/survey-cli/pkg/places"
)

const (
	// defaultMaxPages caps pagination per (zone, keyword). This bounds cost
	// regardless of result-set size; it is not a provider limitation.
	defaultMaxPages = 3

	// defaultTokenDelay is the minimum wait before using a continuation
	// token. The provider rejects tokens that are used immediately.
	defaultTokenDelay = 2 * time.Second
)

// Searcher wraps the Places client with rate limiting, bounded pagination,
// and bounded retry. A single Searcher (and its limiter) is shared by all
// concurrent fetches so the aggregate call rate stays capped.
type Searcher struct {
	client     places.Client
	limiter    *rate.Limiter
	language   string
	maxPages   int
	tokenDelay time.Duration
	retry      resilience.RetryConfig
}

// SearcherOpts configures a Searcher.
type SearcherOpts struct {
	// RatePerSec is the provider call budget in calls per second.
	// Defaults to 10.
	RatePerSec float64
	// Language is an optional provider language hint (e.g. "id").
	Language string
	// MaxPages caps pagination per search. Defaults to 3.
	MaxPages int
	// TokenDelay overrides the continuation-token wait. Defaults to 2s.
	TokenDelay time.Duration
	// Retry overrides the provider retry policy.
	Retry *resilience.RetryConfig
}

// NewSearcher creates a Searcher over the given client.
func NewSearcher(client places.Client, opts SearcherOpts) *Searcher {
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 10
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.TokenDelay < 0 {
		opts.TokenDelay = 0
	} else if opts.TokenDelay == 0 {
		opts.TokenDelay = defaultTokenDelay
	}
	retryCfg := resilience.DefaultRetryConfig()
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}
	return &Searcher{
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		language:   opts.Language,
		maxPages:   opts.MaxPages,
		tokenDelay: opts.TokenDelay,
		retry:      retryCfg,
	}
}

// SearchPage fetches one page of results for a (zone, keyword) pair. It
// blocks on the shared rate limiter before the network call and does not
// retry; retry policy belongs to the caller.
func (s *Searcher) SearchPage(ctx context.Context, zone model.Zone, keyword string, radiusM int, pageToken string) ([]model.Candidate, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	resp, err := s.client.NearbySearch(ctx, places.NearbyRequest{
		Lat:       zone.Lat,
		Lon:       zone.Lon,
		RadiusM:   radiusM,
		Keyword:   keyword,
		Language:  s.language,
		PageToken: pageToken,
	})
	if err != nil {
		return nil, "", err
	}

	candidates := make([]model.Candidate, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.PlaceID == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			PlaceID: res.PlaceID,
			Name:    res.Name,
			Types:   res.Types,
			Zone:    zone.Name,
			Keyword: keyword,
		})
	}
	return candidates, resp.NextPageToken, nil
}

// SearchAll fetches up to maxPages of results for a (zone, query) pair,
// following continuation tokens. A failure on a continuation page keeps the
// pages already collected; partial results are never thrown away. Returns
// the candidates, the number of provider calls made, and the first
// unrecovered error, if any.
func (s *Searcher) SearchAll(ctx context.Context, zone model.Zone, q model.Query) ([]model.Candidate, int, error) {
	radius := zone.RadiusM
	if q.RadiusM > 0 {
		radius = q.RadiusM
	}

	var (
		all   []model.Candidate
		token string
		calls int
	)

	for page := 0; page < s.maxPages; page++ {
		if page > 0 {
			// Continuation tokens are not valid immediately.
			timer := time.NewTimer(s.tokenDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return all, calls, ctx.Err()
			case <-timer.C:
			}
		}

		type pageResult struct {
			candidates []model.Candidate
			next       string
		}
		res, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (pageResult, error) {
			calls++
			candidates, next, err := s.SearchPage(ctx, zone, q.Keyword, radius, token)
			return pageResult{candidates: candidates, next: next}, err
		})
		if err != nil {
			return all, calls, err
		}

		all = append(all, res.candidates...)
		if res.next == "" {
			break
		}
		token = res.next
	}

	return all, calls, nil
}

// FetchDetail fetches the enriched detail record for one place ID, with
// rate limiting and bounded retry.
func (s *Searcher) FetchDetail(ctx context.Context, placeID string) (model.Detail, error) {
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*places.DetailResponse, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return s.client.Details(ctx, places.DetailRequest{PlaceID: placeID, Language: s.language})
	})
	if err != nil {
		return model.Detail{}, err
	}
	return detailFromResponse(resp), nil
}

func detailFromResponse(resp *places.DetailResponse) model.Detail {
	d := model.Detail{
		PlaceID:     resp.PlaceID,
		Name:        resp.Name,
		Address:     resp.Address,
		Vicinity:    resp.Vicinity,
		Rating:      resp.Rating,
		ReviewCount: resp.ReviewCount,
		Website:     resp.Website,
		Phone:       resp.Phone,
		PriceLevel:  resp.PriceLevel,
		// The provider omits business_status for places it has no signal
		// on; treat those as operational.
		IsOperational: resp.BusinessStatus == "" || resp.BusinessStatus == "OPERATIONAL",
	}
	if loc := resp.Geometry.Location; loc != nil {
		d.Lat = loc.Lat
		d.Lon = loc.Lng
		d.HasLocation = true
	}
	if resp.OpeningHours != nil {
		d.OpenNow = resp.OpeningHours.OpenNow
	}
	return d
}
