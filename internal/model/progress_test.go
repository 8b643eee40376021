package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Zones(t *testing.T) {
	p := NewProgress()
	assert.False(t, p.ZoneCompleted("Z1"))

	p.MarkZoneCompleted("Z1")
	p.MarkZoneCompleted("Z2")
	p.MarkZoneCompleted("Z1") // idempotent

	assert.True(t, p.ZoneCompleted("Z1"))
	assert.True(t, p.ZoneCompleted("Z2"))
	assert.Equal(t, []string{"Z1", "Z2"}, p.CompletedZones)
}

func TestProgress_AddRecord(t *testing.T) {
	p := NewProgress()

	require.True(t, p.AddRecord(Record{PlaceID: "P1", Name: "first"}))
	assert.True(t, p.Seen("P1"))

	// The second insert loses; the first record wins.
	assert.False(t, p.AddRecord(Record{PlaceID: "P1", Name: "second"}))
	assert.Equal(t, "first", p.Records["P1"].Name)
	assert.Len(t, p.Records, 1)
}

func TestProgress_Bump(t *testing.T) {
	p := NewProgress()
	p.Bump("found_Competitor")
	p.Bump("found_Competitor")
	p.Bump("duplicates_skipped")

	assert.Equal(t, 2, p.Stats["found_Competitor"])
	assert.Equal(t, 1, p.Stats["duplicates_skipped"])
	assert.Zero(t, p.Stats["never_bumped"])
}
