// Package dataset reads and writes the crawl output CSV. The column set and
// order are fixed by model.Columns; downstream GIS imports break on any
// deviation.
package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pawmetric/survey-cli/internal/model"
)

// Write renders the records to path, sorted by (category, sub_category,
// popularity_score descending) so the strongest entries in each bucket lead.
func Write(path string, records []model.Record) error {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	Sort(sorted)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "dataset: create dir %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.Columns); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, r := range sorted {
		if err := w.Write(r.Row()); err != nil {
			return eris.Wrapf(err, "dataset: write record %s", r.PlaceID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "dataset: flush %s", path)
	}
	return f.Close()
}

// Sort orders records by category, then sub-category, then popularity score
// descending, with place ID as the final tiebreak for determinism.
func Sort(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SubCategory != b.SubCategory {
			return a.SubCategory < b.SubCategory
		}
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		return a.PlaceID < b.PlaceID
	})
}

// Read loads a dataset CSV written by Write (or by a compatible producer).
// The header must carry every contract column; extra columns are ignored.
func Read(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("dataset: %s: empty file", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range model.Columns {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("dataset: %s: missing column %q", path, name)
		}
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, err := parseRecord(row, col)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s line %d", path, i+2)
		}
		records = append(records, r)
	}
	return records, nil
}

func parseRecord(row []string, col map[string]int) (model.Record, error) {
	get := func(name string) string {
		idx := col[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	r := model.Record{
		PlaceID:       get("place_id"),
		Name:          get("name"),
		Category:      get("category"),
		SubCategory:   get("sub_category"),
		Address:       get("address"),
		Vicinity:      get("vicinity"),
		Website:       get("website"),
		Phone:         get("phone"),
		PriceLevel:    get("price_level"),
		Types:         get("types"),
		SearchZone:    get("search_zone"),
		SearchKeyword: get("search_keyword"),
		Timestamp:     get("timestamp"),
	}
	if r.PlaceID == "" {
		return r, eris.New("empty place_id")
	}

	var err error
	if r.Latitude, err = parseOptFloat(get("latitude")); err != nil {
		return r, eris.Wrap(err, "latitude")
	}
	if r.Longitude, err = parseOptFloat(get("longitude")); err != nil {
		return r, eris.Wrap(err, "longitude")
	}
	if r.Rating, err = parseOptFloat(get("rating")); err != nil {
		return r, eris.Wrap(err, "rating")
	}
	if r.OpenNow, err = parseOptBool(get("is_open_now")); err != nil {
		return r, eris.Wrap(err, "is_open_now")
	}
	if r.BufferRadiusM, err = parseOptInt(get("buffer_radius_m")); err != nil {
		return r, eris.Wrap(err, "buffer_radius_m")
	}

	if raw := get("review_count"); raw != "" {
		if r.ReviewCount, err = strconv.Atoi(raw); err != nil {
			return r, eris.Errorf("review_count: not an integer: %q", raw)
		}
	}
	if raw := get("is_operational"); raw != "" {
		if r.IsOperational, err = strconv.ParseBool(raw); err != nil {
			return r, eris.Errorf("is_operational: not a bool: %q", raw)
		}
	}
	if raw := get("popularity_score"); raw != "" {
		if r.PopularityScore, err = strconv.ParseFloat(raw, 64); err != nil {
			return r, eris.Errorf("popularity_score: not a number: %q", raw)
		}
	}
	return r, nil
}

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Errorf("not a number: %q", s)
	}
	return &v, nil
}

func parseOptInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, eris.Errorf("not an integer: %q", s)
	}
	return &v, nil
}

func parseOptBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, eris.Errorf("not a bool: %q", s)
	}
	return &v, nil
}
