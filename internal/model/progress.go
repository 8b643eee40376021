package model

// ProgressSchemaVersion identifies the checkpoint file layout. Bump on any
// incompatible change to Progress or Record.
const ProgressSchemaVersion = 1

// Progress is the durable crawl state. The crawl engine owns it exclusively
// for the duration of a run; the checkpoint store only serializes it.
type Progress struct {
	SchemaVersion  int               `json:"schema_version"`
	CompletedZones []string          `json:"completed_zones"`
	Records        map[string]Record `json:"records"`
	Stats          map[string]int    `json:"stats"`
	APICalls       int               `json:"api_calls"`
}

// NewProgress returns an empty progress state at the current schema version.
func NewProgress() *Progress {
	return &Progress{
		SchemaVersion: ProgressSchemaVersion,
		Records:       make(map[string]Record),
		Stats:         make(map[string]int),
	}
}

// ZoneCompleted reports whether the named zone is already checkpointed.
func (p *Progress) ZoneCompleted(name string) bool {
	for _, z := range p.CompletedZones {
		if z == name {
			return true
		}
	}
	return false
}

// MarkZoneCompleted appends the zone to the completed set. Idempotent.
func (p *Progress) MarkZoneCompleted(name string) {
	if !p.ZoneCompleted(name) {
		p.CompletedZones = append(p.CompletedZones, name)
	}
}

// Seen reports whether a place ID already has a record.
func (p *Progress) Seen(placeID string) bool {
	_, ok := p.Records[placeID]
	return ok
}

// AddRecord inserts the record if its place ID is not present yet. Returns
// false when the ID was already taken; the existing record is never replaced.
func (p *Progress) AddRecord(r Record) bool {
	if p.Seen(r.PlaceID) {
		return false
	}
	p.Records[r.PlaceID] = r
	return true
}

// Bump increments a named stats counter.
func (p *Progress) Bump(counter string) {
	p.Stats[counter]++
}
