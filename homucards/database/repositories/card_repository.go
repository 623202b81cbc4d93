package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/uptrace/bun"
)

type CardRepository interface {
	// Ensure inserts the card if the (series, name) pair is new. Existing
	// rows keep their position so re-ingestion never reshuffles a catalog
	// that users already hold cards from.
	Ensure(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	ListBySeries(ctx context.Context, seriesID int64) ([]*models.Card, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type cardRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{
		BaseRepository: NewBaseRepository(db),
		db:             db,
	}
}

func (r *cardRepository) Ensure(ctx context.Context, card *models.Card) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(card).
		On("CONFLICT (series_id, name) DO NOTHING").
		Exec(ctx)
	if err != nil && !isUniqueViolation(err) {
		return r.HandleErrorWithID("ensure", "card", card.Name, err)
	}
	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Relation("Series").
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", id, err)
	}
	return card, nil
}

func (r *cardRepository) ListBySeries(ctx context.Context, seriesID int64) ([]*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("series_id = ?", seriesID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("list", "card", seriesID, err)
	}
	return cards, nil
}

func (r *cardRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)
	if err != nil {
		return 0, r.HandleError("count", "card", err)
	}
	return count, nil
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewDelete().
		Model((*models.Card)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("delete", "card", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &NotFoundError{Entity: "card", ID: id}
	}
	return nil
}
