package gacha

import (
	"context"
	"math/rand/v2"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
)

// Engine picks a uniformly random card from a series. Every card has the
// same odds regardless of position or how many copies exist; there are no
// rarity weights.
type Engine struct {
	seriesRepo repositories.SeriesRepository
	cardRepo   repositories.CardRepository

	// intn is swappable for deterministic draws in tests.
	intn func(n int) int
}

func NewEngine(seriesRepo repositories.SeriesRepository, cardRepo repositories.CardRepository) *Engine {
	return &Engine{
		seriesRepo: seriesRepo,
		cardRepo:   cardRepo,
		intn:       rand.IntN,
	}
}

// Draw resolves the series name case-insensitively and returns one random
// card from it together with the resolved series. Returns ErrNotFound when
// the series does not exist or holds no cards.
func (e *Engine) Draw(ctx context.Context, seriesName string) (*models.Card, *models.Series, error) {
	series, err := e.seriesRepo.GetByNameCI(ctx, seriesName)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	cards, err := e.cardRepo.ListBySeries(ctx, series.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(cards) == 0 {
		return nil, nil, ErrNotFound
	}

	return cards[e.intn(len(cards))], series, nil
}
