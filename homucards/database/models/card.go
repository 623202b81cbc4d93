package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card belongs to exactly one series. Position is the explicit ordering key
// inside the series, assigned from lexicographically sorted filenames at
// ingestion time so that re-ingestion on another filesystem yields the same
// catalog.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SeriesID  int64     `bun:"series_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Filename  string    `bun:"filename,notnull"`
	Position  int       `bun:"position,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Series *Series `bun:"rel:belongs-to,join:series_id=id"`
}
