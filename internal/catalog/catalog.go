// Package catalog loads the search zones and query keywords that define a
// crawl's zone x query cross-product. Catalogs arrive as CSV or XLSX files
// with a header row; columns are matched by name, not position.
package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pawmetric/survey-cli/internal/model"
)

// MaxQueries caps the query catalog. A runaway catalog multiplied by the
// zone count would burn through the API budget before anyone notices.
const MaxQueries = 500

// maxFieldLen caps any single catalog field after sanitization.
const maxFieldLen = 200

// Zones loads a zone catalog. Required columns: zone_name, latitude,
// longitude, radius.
func Zones(path string) ([]model.Zone, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	header, body, err := splitHeader(rows, path, []string{"zone_name", "latitude", "longitude", "radius"})
	if err != nil {
		return nil, err
	}

	var zones []model.Zone
	for i, row := range body {
		if blankRow(row) {
			continue
		}
		line := i + 2 // 1-based, after the header

		z := model.Zone{Name: field(row, header["zone_name"])}
		if z.Lat, err = parseFloat(field(row, header["latitude"])); err != nil {
			return nil, eris.Wrapf(err, "catalog: %s line %d: latitude", path, line)
		}
		if z.Lon, err = parseFloat(field(row, header["longitude"])); err != nil {
			return nil, eris.Wrapf(err, "catalog: %s line %d: longitude", path, line)
		}
		if z.RadiusM, err = parseInt(field(row, header["radius"])); err != nil {
			return nil, eris.Wrapf(err, "catalog: %s line %d: radius", path, line)
		}
		if !z.Valid() {
			return nil, eris.Errorf("catalog: %s line %d: invalid zone %q (lat %v, lon %v, radius %d)",
				path, line, z.Name, z.Lat, z.Lon, z.RadiusM)
		}
		zones = append(zones, z)
	}

	if len(zones) == 0 {
		return nil, eris.Errorf("catalog: %s: no zones", path)
	}
	return zones, nil
}

// Queries loads a query catalog. Required columns: keyword, category,
// sub_category. An optional radius column overrides the zone radius for that
// keyword.
func Queries(path string) ([]model.Query, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	header, body, err := splitHeader(rows, path, []string{"keyword", "category", "sub_category"})
	if err != nil {
		return nil, err
	}
	radiusCol, hasRadius := header["radius"]

	var queries []model.Query
	for i, row := range body {
		if blankRow(row) {
			continue
		}
		line := i + 2

		q := model.Query{
			Keyword:     field(row, header["keyword"]),
			Category:    field(row, header["category"]),
			SubCategory: field(row, header["sub_category"]),
		}
		if q.Keyword == "" || q.Category == "" || q.SubCategory == "" {
			return nil, eris.Errorf("catalog: %s line %d: keyword, category and sub_category are required", path, line)
		}
		if hasRadius {
			if raw := field(row, radiusCol); raw != "" {
				if q.RadiusM, err = parseInt(raw); err != nil {
					return nil, eris.Wrapf(err, "catalog: %s line %d: radius", path, line)
				}
			}
		}
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return nil, eris.Errorf("catalog: %s: no queries", path)
	}
	if len(queries) > MaxQueries {
		return nil, eris.Errorf("catalog: %s: %d queries exceeds the cap of %d", path, len(queries), MaxQueries)
	}
	return queries, nil
}

// readRows loads every row of a CSV or XLSX catalog file, dispatching on the
// file extension.
func readRows(path string) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("catalog: %s: unsupported extension %q (want .csv or .xlsx)", path, ext)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("catalog: %s: no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// splitHeader maps the required column names to their indices and returns the
// body rows. Header matching is case-insensitive.
func splitHeader(rows [][]string, path string, required []string) (map[string]int, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, eris.Errorf("catalog: %s: empty file", path)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := header[name]; !ok {
			return nil, nil, eris.Errorf("catalog: %s: missing required column %q", path, name)
		}
	}
	return header, rows[1:], nil
}

// field returns the sanitized cell at index idx, or "" past the row end.
func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return sanitize(row[idx])
}

// sanitize trims the cell, strips control and quote characters, and caps the
// length. Catalog files come from hand-edited spreadsheets.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' || r == '\'' {
			return -1
		}
		return r
	}, s)
	if len(s) > maxFieldLen {
		s = s[:maxFieldLen]
	}
	return s
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Errorf("not an integer: %q", s)
	}
	return v, nil
}
