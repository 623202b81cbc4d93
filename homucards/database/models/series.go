package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Series is a themed collection of cards. Rows are written only by catalog
// ingestion; name is unique at the storage level while lookups from the
// draw path are case-insensitive.
type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	Category  string    `bun:"category,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
