package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is keyed by the Discord snowflake of the account. The row is created
// lazily: either on username registration or on the first pull.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID     string    `bun:"user_id,pk"`
	Username   string    `bun:"username,nullzero"`
	TotalPulls int64     `bun:"total_pulls,notnull,default:0"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// HasUsername reports whether the one-time username has been set.
func (u *User) HasUsername() bool {
	return u.Username != ""
}
