package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pawmetric/survey-cli/internal/checkpoint"
	"github.com/pawmetric/survey-cli/internal/model"
)

// SearchAPI is the slice of the search layer the engine needs. *Searcher
// implements it; tests substitute a stub.
type SearchAPI interface {
	SearchAll(ctx context.Context, zone model.Zone, q model.Query) ([]model.Candidate, int, error)
	FetchDetail(ctx context.Context, placeID string) (model.Detail, error)
}

// EngineOpts configures a crawl engine.
type EngineOpts struct {
	// DetailConcurrency bounds concurrent detail fetches within one query
	// iteration. Defaults to 1 (sequential). The shared rate limiter keeps
	// the aggregate provider call rate capped either way.
	DetailConcurrency int
	// Now overrides the record timestamp source.
	Now func() time.Time
}

// Engine drives the zone x query crawl. It exclusively owns the progress
// state for the duration of a run; the checkpoint store only serializes it.
type Engine struct {
	search      SearchAPI
	filter      *Filter
	classifier  *Classifier
	checkpoints checkpoint.Store
	concurrency int
	now         func() time.Time
}

// NewEngine creates a crawl engine.
func NewEngine(search SearchAPI, checkpoints checkpoint.Store, opts EngineOpts) *Engine {
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		search:      search,
		filter:      NewFilter(),
		classifier:  NewClassifier(),
		checkpoints: checkpoints,
		concurrency: opts.DetailConcurrency,
		now:         opts.Now,
	}
}

// Run crawls every zone not yet checkpointed, processing the catalog queries
// in order. Provider failures are absorbed at single-call granularity; a
// checkpoint write failure is fatal, since losing durability defeats the
// resumability contract. On cancellation the last completed zone remains
// checkpointed and Run returns the context error alongside the progress
// accumulated so far.
func (e *Engine) Run(ctx context.Context, zones []model.Zone, queries []model.Query) (*model.Progress, error) {
	log := zap.L().With(zap.String("component", "crawl.engine"))

	progress, err := e.checkpoints.Load()
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = model.NewProgress()
	} else {
		log.Info("resuming from checkpoint",
			zap.Int("completed_zones", len(progress.CompletedZones)),
			zap.Int("records", len(progress.Records)),
		)
	}

	for _, zone := range zones {
		if progress.ZoneCompleted(zone.Name) {
			log.Info("skipping completed zone", zap.String("zone", zone.Name))
			continue
		}

		zoneStart := time.Now()
		zoneCalls := 0

		for _, q := range queries {
			if err := ctx.Err(); err != nil {
				return progress, err
			}

			calls := e.runQuery(ctx, progress, zone, q)
			zoneCalls += calls
		}

		if err := ctx.Err(); err != nil {
			return progress, err
		}

		progress.MarkZoneCompleted(zone.Name)
		progress.APICalls += zoneCalls
		if err := e.checkpoints.Save(progress); err != nil {
			return progress, eris.Wrapf(err, "crawl: checkpoint zone %s", zone.Name)
		}

		log.Info("zone completed",
			zap.String("zone", zone.Name),
			zap.Int("api_calls", zoneCalls),
			zap.Int("total_records", len(progress.Records)),
			zap.Duration("elapsed", time.Since(zoneStart)),
		)
	}

	return progress, nil
}

// runQuery executes one (zone, query) iteration and returns the provider
// calls made. Provider errors are logged and counted, never propagated.
func (e *Engine) runQuery(ctx context.Context, progress *model.Progress, zone model.Zone, q model.Query) int {
	log := zap.L().With(
		zap.String("zone", zone.Name),
		zap.String("keyword", q.Keyword),
	)

	candidates, calls, err := e.search.SearchAll(ctx, zone, q)
	if err != nil {
		// Pages collected before the failure are still in candidates.
		log.Warn("search failed", zap.Error(err), zap.Int("partial_candidates", len(candidates)))
		progress.Bump("provider_errors")
	}
	progress.Bump("searches_" + q.Category)

	fresh := e.selectFresh(progress, candidates, q.Category)
	if len(fresh) == 0 {
		return calls
	}

	var (
		mu          sync.Mutex
		detailCalls int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, cand := range fresh {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			detail, err := e.search.FetchDetail(gctx, cand.PlaceID)

			mu.Lock()
			defer mu.Unlock()
			detailCalls++

			if err != nil {
				log.Warn("detail fetch failed", zap.String("place_id", cand.PlaceID), zap.Error(err))
				progress.Bump("detail_failures")
				return nil
			}

			subCategory := e.classifier.Refine(detail.Name, cand.Types, q.Category, q.SubCategory)
			record := BuildRecord(detail, q.Category, subCategory, zone.Name, q.Keyword, q.RadiusM, cand.Types, e.now())

			if progress.AddRecord(record) {
				progress.Bump("found_" + q.Category)
				progress.Bump("found_" + subCategory)
			} else {
				progress.Bump("duplicates_skipped")
			}
			return nil
		})
	}
	_ = g.Wait()

	return calls + detailCalls
}

// selectFresh filters candidates down to relevant, not-yet-seen place IDs,
// deduplicated within the batch so no ID is detail-fetched twice.
func (e *Engine) selectFresh(progress *model.Progress, candidates []model.Candidate, category string) []model.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	var fresh []model.Candidate

	for _, cand := range candidates {
		if _, dup := seen[cand.PlaceID]; dup {
			continue
		}
		seen[cand.PlaceID] = struct{}{}

		if progress.Seen(cand.PlaceID) {
			progress.Bump("duplicates_skipped")
			continue
		}
		if !e.filter.Relevant(cand.Name, cand.Types, category) {
			progress.Bump("filtered_irrelevant")
			continue
		}
		fresh = append(fresh, cand)
	}
	return fresh
}
