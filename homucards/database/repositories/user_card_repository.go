package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/uptrace/bun"
)

type UserCardRepository interface {
	// Grant records one copy of the card for the user and returns the
	// owned quantity after the grant. The increment is a single upsert
	// statement, so concurrent grants for the same pair serialize on the
	// row and every copy is counted.
	Grant(ctx context.Context, userID string, cardID int64) (int64, error)
	Get(ctx context.Context, userID string, cardID int64) (*models.UserCard, error)
	// PageByUser returns one inventory page joined with card names, ordered
	// by card name, plus the user's total distinct card count.
	PageByUser(ctx context.Context, userID string, limit, offset int) ([]models.InventoryEntry, int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type userCardRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewUserCardRepository(db *bun.DB) UserCardRepository {
	return &userCardRepository{
		BaseRepository: NewBaseRepository(db),
		db:             db,
	}
}

func (r *userCardRepository) Grant(ctx context.Context, userID string, cardID int64) (int64, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var quantity int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		// Ledger increment and resulting count in one statement. No
		// read-modify-write, so grants cannot lose updates under load.
		err := tx.QueryRowContext(ctx, `
			INSERT INTO user_cards (user_id, card_id, quantity, first_obtained, updated_at)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT (user_id, card_id)
			DO UPDATE SET quantity = user_cards.quantity + 1, updated_at = EXCLUDED.updated_at
			RETURNING quantity`,
			userID, cardID, now, now,
		).Scan(&quantity)
		if err != nil {
			return err
		}

		// Lifetime pull counter moves with the grant or not at all.
		_, err = tx.NewInsert().
			Model(&models.User{UserID: userID, TotalPulls: 1, CreatedAt: now, UpdatedAt: now}).
			On("CONFLICT (user_id) DO UPDATE").
			Set("total_pulls = u.total_pulls + 1").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, r.HandleErrorWithID("grant", "user_card", cardID, err)
	}
	return quantity, nil
}

func (r *userCardRepository) Get(ctx context.Context, userID string, cardID int64) (*models.UserCard, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	uc := new(models.UserCard)
	err := r.db.NewSelect().
		Model(uc).
		Where("user_id = ?", userID).
		Where("card_id = ?", cardID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user_card", cardID, err)
	}
	return uc, nil
}

func (r *userCardRepository) PageByUser(ctx context.Context, userID string, limit, offset int) ([]models.InventoryEntry, int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	total, err := r.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var entries []models.InventoryEntry
	err = r.db.NewSelect().
		Model((*models.UserCard)(nil)).
		ColumnExpr("uc.card_id AS card_id").
		ColumnExpr("c.name AS card_name").
		ColumnExpr("uc.quantity AS quantity").
		Join("JOIN cards AS c ON c.id = uc.card_id").
		Where("uc.user_id = ?", userID).
		Order("c.name ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &entries)
	if err != nil {
		return nil, 0, r.HandleErrorWithID("page", "user_card", userID, err)
	}
	return entries, total, nil
}

func (r *userCardRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.UserCard)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, r.HandleErrorWithID("count", "user_card", userID, err)
	}
	return count, nil
}
