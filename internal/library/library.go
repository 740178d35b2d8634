// Package library persists generated media-library entries and the
// mutable application settings.
package library

import (
	"time"
)

// MediaType distinguishes movies from series.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// Record is one generated library entry. Records are keyed by title name
// (see DedupPolicy), not by the source-assigned identifier: the same title
// re-resolved from a different aggregator must land on the same row.
type Record struct {
	ID           int64
	SourceItemID string // identifier assigned by the winning source
	Name         string
	Year         string
	PosterURL    string
	Type         MediaType
	SaveDir      string // absolute directory holding the .strm tree
	SourceURL    string // endpoint the last generation resolved from
	SourceIndex  int
	LinkKind     string // link classification of the last generation
	UpdatedAt    time.Time
}

// DedupPolicy selects the uniqueness key for records. Name-only is the
// historical behavior; two different titles sharing a display name collide
// under it (last write wins), which name+year narrows.
type DedupPolicy string

const (
	DedupByName     DedupPolicy = "name"
	DedupByNameYear DedupPolicy = "name_year"
)
