package crawl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmetric/survey-cli/internal/model"
)

// memStore is an in-memory checkpoint store.
type memStore struct {
	mu      sync.Mutex
	saved   *model.Progress
	saves   int
	saveErr error
}

func (m *memStore) Save(p *model.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	// Deep-ish copy so later mutation does not alias the snapshot.
	snap := *p
	snap.Records = make(map[string]model.Record, len(p.Records))
	for k, v := range p.Records {
		snap.Records[k] = v
	}
	snap.Stats = make(map[string]int, len(p.Stats))
	for k, v := range p.Stats {
		snap.Stats[k] = v
	}
	snap.CompletedZones = append([]string(nil), p.CompletedZones...)
	m.saved = &snap
	return nil
}

func (m *memStore) Load() (*model.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

// stubSearch serves scripted candidates per (zone, keyword) and counts
// detail fetches per place ID.
type stubSearch struct {
	mu         sync.Mutex
	candidates map[string][]model.Candidate // key: zone + "|" + keyword
	details    map[string]model.Detail
	searchErr  error
	detailHits map[string]int
	callsPer   int // provider calls reported per search
}

func newStubSearch() *stubSearch {
	return &stubSearch{
		candidates: make(map[string][]model.Candidate),
		details:    make(map[string]model.Detail),
		detailHits: make(map[string]int),
		callsPer:   1,
	}
}

func (s *stubSearch) add(zone, keyword string, c model.Candidate) {
	c.Zone, c.Keyword = zone, keyword
	s.candidates[zone+"|"+keyword] = append(s.candidates[zone+"|"+keyword], c)
}

func (s *stubSearch) SearchAll(_ context.Context, zone model.Zone, q model.Query) ([]model.Candidate, int, error) {
	if s.searchErr != nil {
		return nil, s.callsPer, s.searchErr
	}
	return s.candidates[zone.Name+"|"+q.Keyword], s.callsPer, nil
}

func (s *stubSearch) FetchDetail(_ context.Context, placeID string) (model.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailHits[placeID]++
	d, ok := s.details[placeID]
	if !ok {
		return model.Detail{}, eris.New("no detail scripted")
	}
	return d, nil
}

var (
	zoneZ1 = model.Zone{Name: "Z1", Lat: -6.26, Lon: 106.81, RadiusM: 5000}
	zoneZ2 = model.Zone{Name: "Z2", Lat: -6.19, Lon: 106.82, RadiusM: 5000}

	vetQuery = model.Query{Keyword: "vet clinic", Category: "Competitor", SubCategory: "Clinic_General"}
)

func TestRun_Scenario(t *testing.T) {
	search := newStubSearch()
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "P1", Name: "Klinik Hewan", Types: []string{"veterinary_care"}})
	search.details["P1"] = model.Detail{
		PlaceID: "P1", Name: "Klinik Hewan",
		Rating: fptr(4.5), ReviewCount: iptr(100), IsOperational: true,
	}
	store := &memStore{}
	engine := NewEngine(search, store, EngineOpts{})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.NoError(t, err)
	require.Len(t, progress.Records, 1)
	rec := progress.Records["P1"]
	assert.Equal(t, "Competitor", rec.Category)
	assert.Equal(t, "Clinic_Only", rec.SubCategory)
	assert.InDelta(t, 0.09, rec.PopularityScore, 0.0001)
	assert.Equal(t, []string{"Z1"}, progress.CompletedZones)
	assert.Equal(t, 2, progress.APICalls) // one search + one detail
	assert.Equal(t, 1, progress.Stats["found_Competitor"])
	assert.Equal(t, 1, store.saves)
}

func TestRun_DedupAcrossZonesAndKeywords(t *testing.T) {
	search := newStubSearch()
	// The same place surfaces in both zones and under a synonym keyword.
	for _, zone := range []string{"Z1", "Z2"} {
		for _, kw := range []string{"vet clinic", "klinik hewan"} {
			search.add(zone, kw, model.Candidate{PlaceID: "P1", Name: "Klinik Hewan", Types: []string{"veterinary_care"}})
		}
	}
	search.details["P1"] = model.Detail{PlaceID: "P1", Name: "Klinik Hewan", IsOperational: true}

	queries := []model.Query{
		vetQuery,
		{Keyword: "klinik hewan", Category: "Competitor", SubCategory: "Clinic_General"},
	}
	engine := NewEngine(search, &memStore{}, EngineOpts{})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1, zoneZ2}, queries)

	require.NoError(t, err)
	assert.Len(t, progress.Records, 1)
	assert.Equal(t, 1, search.detailHits["P1"], "detail must be fetched exactly once per place_id")
	assert.Equal(t, 3, progress.Stats["duplicates_skipped"])
}

func TestRun_FilteredCandidateNeverFetched(t *testing.T) {
	search := newStubSearch()
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "PARK", Name: "Central Parking", Types: []string{"parking"}})
	engine := NewEngine(search, &memStore{}, EngineOpts{})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.NoError(t, err)
	assert.Empty(t, progress.Records)
	assert.Equal(t, 1, progress.Stats["filtered_irrelevant"])
	assert.Zero(t, search.detailHits["PARK"], "irrelevant candidates must not be detail-fetched")
}

func TestRun_ProviderErrorIsZeroResults(t *testing.T) {
	search := newStubSearch()
	search.searchErr = eris.New("provider down")
	engine := NewEngine(search, &memStore{}, EngineOpts{})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.NoError(t, err, "provider errors must not abort the crawl")
	assert.Empty(t, progress.Records)
	assert.Equal(t, 1, progress.Stats["provider_errors"])
	assert.Equal(t, []string{"Z1"}, progress.CompletedZones)
}

func TestRun_DetailFailureSkipsCandidate(t *testing.T) {
	search := newStubSearch()
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "P1", Name: "OK", Types: nil})
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "P2", Name: "Broken", Types: nil})
	search.details["P1"] = model.Detail{PlaceID: "P1", Name: "OK", IsOperational: true}
	// P2 has no scripted detail: FetchDetail errors.
	engine := NewEngine(search, &memStore{}, EngineOpts{})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.NoError(t, err)
	assert.Len(t, progress.Records, 1)
	assert.Equal(t, 1, progress.Stats["detail_failures"])
}

func TestRun_CheckpointFailureIsFatal(t *testing.T) {
	search := newStubSearch()
	store := &memStore{saveErr: eris.New("disk full")}
	engine := NewEngine(search, store, EngineOpts{})

	_, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_ResumeSkipsCompletedZones(t *testing.T) {
	search := newStubSearch()
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "P1", Name: "A"})
	search.add("Z2", "vet clinic", model.Candidate{PlaceID: "P2", Name: "B"})
	search.details["P1"] = model.Detail{PlaceID: "P1", Name: "A", IsOperational: true}
	search.details["P2"] = model.Detail{PlaceID: "P2", Name: "B", IsOperational: true}

	store := &memStore{}
	prior := model.NewProgress()
	prior.MarkZoneCompleted("Z1")
	prior.Records["P1"] = model.Record{PlaceID: "P1", Name: "A"}
	require.NoError(t, store.Save(prior))
	store.saves = 0

	engine := NewEngine(search, store, EngineOpts{})
	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1, zoneZ2}, []model.Query{vetQuery})

	require.NoError(t, err)
	assert.Zero(t, search.detailHits["P1"], "completed zones must not be re-crawled")
	assert.Equal(t, 1, search.detailHits["P2"])
	assert.Len(t, progress.Records, 2)
	assert.Equal(t, 1, store.saves, "only the new zone checkpoints")
}

func TestRun_InterruptedEqualsUninterrupted(t *testing.T) {
	buildSearch := func() *stubSearch {
		s := newStubSearch()
		s.add("Z1", "vet clinic", model.Candidate{PlaceID: "P1", Name: "A", Types: []string{"veterinary_care"}})
		s.add("Z2", "vet clinic", model.Candidate{PlaceID: "P2", Name: "B", Types: []string{"veterinary_care"}})
		s.add("Z2", "vet clinic", model.Candidate{PlaceID: "P1", Name: "A", Types: []string{"veterinary_care"}})
		s.details["P1"] = model.Detail{PlaceID: "P1", Name: "A", Rating: fptr(4.0), ReviewCount: iptr(50), IsOperational: true}
		s.details["P2"] = model.Detail{PlaceID: "P2", Name: "B", Rating: fptr(3.5), ReviewCount: iptr(200), IsOperational: true}
		return s
	}
	zones := []model.Zone{zoneZ1, zoneZ2}
	queries := []model.Query{vetQuery}
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	opts := EngineOpts{Now: func() time.Time { return ts }}

	// Uninterrupted run.
	full, err := NewEngine(buildSearch(), &memStore{}, opts).Run(context.Background(), zones, queries)
	require.NoError(t, err)

	// Interrupted run: first crawl only covers Z1, second resumes from the
	// checkpoint left behind.
	store := &memStore{}
	_, err = NewEngine(buildSearch(), store, opts).Run(context.Background(), zones[:1], queries)
	require.NoError(t, err)
	resumed, err := NewEngine(buildSearch(), store, opts).Run(context.Background(), zones, queries)
	require.NoError(t, err)

	assert.Equal(t, full.Records, resumed.Records)
	assert.Equal(t, full.CompletedZones, resumed.CompletedZones)
}

func TestRun_CancellationBetweenQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	search := newStubSearch()
	search.add("Z1", "vet clinic", model.Candidate{PlaceID: "P1", Name: "A"})
	store := &memStore{}
	engine := NewEngine(search, store, EngineOpts{})

	progress, err := engine.Run(ctx, []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, progress.CompletedZones)
	assert.Zero(t, store.saves, "a cancelled zone must not be checkpointed")
}

func TestRun_ConcurrentDetailFetches(t *testing.T) {
	search := newStubSearch()
	for _, id := range []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"} {
		search.add("Z1", "vet clinic", model.Candidate{PlaceID: id, Name: "Place " + id, Types: []string{"veterinary_care"}})
		search.details[id] = model.Detail{PlaceID: id, Name: "Place " + id, Rating: fptr(4.0), ReviewCount: iptr(10), IsOperational: true}
	}
	engine := NewEngine(search, &memStore{}, EngineOpts{DetailConcurrency: 4})

	progress, err := engine.Run(context.Background(), []model.Zone{zoneZ1}, []model.Query{vetQuery})

	require.NoError(t, err)
	assert.Len(t, progress.Records, 8)
	for id, hits := range search.detailHits {
		assert.Equal(t, 1, hits, "place %s fetched more than once", id)
	}
	assert.Equal(t, 8, progress.Stats["found_Competitor"])
}
