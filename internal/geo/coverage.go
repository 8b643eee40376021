// Package geo analyzes the spatial layout of a zone catalog: pairwise
// overlaps and covered area. Overlapping zones are normal (dedup handles the
// duplicate hits) but heavy overlap wastes API budget, so the coverage report
// surfaces it before a crawl.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/pawmetric/survey-cli/internal/model"
)

// Overlap describes one overlapping zone pair.
type Overlap struct {
	ZoneA     string  `json:"zone_a"`
	ZoneB     string  `json:"zone_b"`
	DistanceM float64 `json:"distance_m"`
	// OverlapM is how far the two radii reach past each other.
	OverlapM float64 `json:"overlap_m"`
}

// Report is the coverage summary for a zone catalog.
type Report struct {
	Zones      int       `json:"zones"`
	Overlaps   []Overlap `json:"overlaps"`
	TotalKM2   float64   `json:"total_km2"`
	LargestKM2 float64   `json:"largest_km2"`
	// Centroid is the mean zone center, for centering map views.
	CentroidLat float64 `json:"centroid_lat"`
	CentroidLon float64 `json:"centroid_lon"`
}

// Analyze computes the coverage report for the zones.
func Analyze(zones []model.Zone) Report {
	report := Report{Zones: len(zones)}
	if len(zones) == 0 {
		return report
	}

	for i, a := range zones {
		areaKM2 := zoneAreaKM2(a)
		report.TotalKM2 += areaKM2
		if areaKM2 > report.LargestKM2 {
			report.LargestKM2 = areaKM2
		}
		report.CentroidLat += a.Lat
		report.CentroidLon += a.Lon

		for _, b := range zones[i+1:] {
			d := DistanceM(a, b)
			if reach := float64(a.RadiusM + b.RadiusM); d < reach {
				report.Overlaps = append(report.Overlaps, Overlap{
					ZoneA:     a.Name,
					ZoneB:     b.Name,
					DistanceM: math.Round(d),
					OverlapM:  math.Round(reach - d),
				})
			}
		}
	}

	report.CentroidLat /= float64(len(zones))
	report.CentroidLon /= float64(len(zones))
	return report
}

// DistanceM is the great-circle distance between two zone centers in meters.
func DistanceM(a, b model.Zone) float64 {
	return geo.DistanceHaversine(point(a), point(b))
}

// Contains reports whether the coordinate falls inside the zone's radius.
func Contains(z model.Zone, lat, lon float64) bool {
	return geo.DistanceHaversine(point(z), orb.Point{lon, lat}) <= float64(z.RadiusM)
}

func zoneAreaKM2(z model.Zone) float64 {
	rKM := float64(z.RadiusM) / 1000
	return math.Pi * rKM * rKM
}

// point converts a zone center. orb.Point is [lon, lat].
func point(z model.Zone) orb.Point {
	return orb.Point{z.Lon, z.Lat}
}
