package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/uptrace/bun"
)

type SeriesRepository interface {
	// Ensure inserts the series if it does not exist yet and returns the
	// stored row either way. Used by catalog ingestion, which must be
	// idempotent across restarts.
	Ensure(ctx context.Context, name, category string) (*models.Series, error)
	GetByNameCI(ctx context.Context, name string) (*models.Series, error)
	GetAll(ctx context.Context) ([]*models.Series, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Series, error)
	Categories(ctx context.Context) ([]string, error)
}

type seriesRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewSeriesRepository(db *bun.DB) SeriesRepository {
	return &seriesRepository{
		BaseRepository: NewBaseRepository(db),
		db:             db,
	}
}

func (r *seriesRepository) Ensure(ctx context.Context, name, category string) (*models.Series, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	series := &models.Series{
		Name:      name,
		Category:  category,
		CreatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(series).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil && !isUniqueViolation(err) {
		return nil, r.HandleErrorWithID("ensure", "series", name, err)
	}

	// Re-read so the caller always gets the persisted ID, whether the
	// insert happened or the row was already there.
	return r.GetByNameCI(ctx, name)
}

func (r *seriesRepository) GetByNameCI(ctx context.Context, name string) (*models.Series, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	series := new(models.Series)
	err := r.db.NewSelect().
		Model(series).
		Where("LOWER(name) = LOWER(?)", name).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "series", name, err)
	}
	return series, nil
}

func (r *seriesRepository) GetAll(ctx context.Context) ([]*models.Series, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var series []*models.Series
	err := r.db.NewSelect().
		Model(&series).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list", "series", err)
	}
	return series, nil
}

func (r *seriesRepository) ListByCategory(ctx context.Context, category string) ([]*models.Series, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var series []*models.Series
	err := r.db.NewSelect().
		Model(&series).
		Where("category = ?", category).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("list", "series", category, err)
	}
	return series, nil
}

func (r *seriesRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var categories []string
	err := r.db.NewSelect().
		Model((*models.Series)(nil)).
		ColumnExpr("DISTINCT category").
		Order("category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, r.HandleError("list_categories", "series", err)
	}
	return categories, nil
}
