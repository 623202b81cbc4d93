package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserCard is the ownership ledger row: one counter per (user, card). A row
// exists only once the user has pulled that card at least once, and quantity
// never goes below 1 afterwards. All mutation goes through the atomic
// upsert-increment in the repository.
type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	UserID        string    `bun:"user_id,pk"`
	CardID        int64     `bun:"card_id,pk"`
	Quantity      int64     `bun:"quantity,notnull,default:0"`
	FirstObtained time.Time `bun:"first_obtained,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// InventoryEntry is a read-model row for the paginated inventory view:
// ownership joined with the card catalog. Not a table.
type InventoryEntry struct {
	CardID   int64  `bun:"card_id"`
	CardName string `bun:"card_name"`
	Quantity int64  `bun:"quantity"`
}
