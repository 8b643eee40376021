package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevant_ExcludedTypes(t *testing.T) {
	f := NewFilter()

	// Any excluded type rejects the hit regardless of name.
	for _, excluded := range []string{
		"parking", "atm", "gas_station", "bus_station", "subway_station",
		"train_station", "storage", "warehouse", "government", "embassy",
		"cemetery", "loading_dock",
	} {
		assert.False(t, f.Relevant("Klinik Hewan Sehat", []string{"veterinary_care", excluded}, "Competitor"),
			"type %q should be excluded", excluded)
	}
}

func TestRelevant_ExcludedNames(t *testing.T) {
	f := NewFilter()

	tests := []struct {
		name string
		want bool
	}{
		{"Blok M Parking Lot", false},
		{"Warehouse 21", false},
		{"Gudang Pakan Ternak", false},
		{"SPBU Gas Station", false},
		{"Klinik Hewan Jakarta", true},
		{"Pet Station Grooming", true}, // "station" alone is not a pattern
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Relevant(tt.name, []string{"point_of_interest"}, "Competitor"), tt.name)
	}
}

func TestRelevant_DefaultsToAccept(t *testing.T) {
	f := NewFilter()

	// No exclusion rule fired: accept, even with unknown types.
	assert.True(t, f.Relevant("Somewhere New", []string{"establishment", "unknown_tag"}, "Competitor"))
	assert.True(t, f.Relevant("", nil, "Competitor"))
}

func TestRelevant_WorshipScopedToCategory(t *testing.T) {
	f := NewFilter()

	types := []string{"place_of_worship", "mosque"}

	// Community catalogs search for mosques and churches by keyword; the
	// worship tag must not suppress their own results.
	assert.True(t, f.Relevant("Masjid Al-Ikhlas", types, "Community_Infrastructure"))
	assert.False(t, f.Relevant("Masjid Al-Ikhlas", types, "Competitor"))
	assert.False(t, f.Relevant("Masjid Al-Ikhlas", types, "Family_Services"))
}

func TestRelevant_MarketExcludesMalls(t *testing.T) {
	f := NewFilter()

	assert.True(t, f.Relevant("Pasar Santa", []string{"point_of_interest"}, "Community_Infrastructure"))
	assert.False(t, f.Relevant("Pasar Modern Mall", []string{"shopping_mall"}, "Community_Infrastructure"))
}

func TestRelevant_CaseInsensitive(t *testing.T) {
	f := NewFilter()

	assert.False(t, f.Relevant("CENTRAL PARKING LOT", []string{"POINT_OF_INTEREST"}, "Competitor"))
	assert.False(t, f.Relevant("ok place", []string{"Parking"}, "Competitor"))
}
