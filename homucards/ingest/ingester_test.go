package ingest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
)

// fakeStore serves a fixed tree. Listings are returned shuffled-ish (map
// iteration plus reverse) to prove the ingester does its own sorting.
type fakeStore struct {
	tree    map[string]map[string][]string
	failing map[string]bool
}

func (f *fakeStore) Categories(_ context.Context) ([]string, error) {
	var out []string
	for c := range f.tree {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) Series(_ context.Context, category string) ([]string, error) {
	var out []string
	for s := range f.tree[category] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) Images(_ context.Context, category, series string) ([]string, error) {
	if f.failing[series] {
		return nil, errors.New("listing blew up")
	}
	images := append([]string{}, f.tree[category][series]...)
	// Deliberately reversed: position assignment must not depend on
	// listing order.
	sort.Sort(sort.Reverse(sort.StringSlice(images)))
	return images, nil
}

func (f *fakeStore) Fetch(_ context.Context, _, _, _ string) ([]byte, error) {
	return nil, errors.New("not used by ingestion")
}

type memSeriesRepo struct {
	mu     sync.Mutex
	nextID int64
	series map[string]*models.Series
}

func newMemSeriesRepo() *memSeriesRepo {
	return &memSeriesRepo{series: map[string]*models.Series{}}
}

func (m *memSeriesRepo) Ensure(_ context.Context, name, category string) (*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if s, ok := m.series[key]; ok {
		return s, nil
	}
	m.nextID++
	s := &models.Series{ID: m.nextID, Name: name, Category: category, CreatedAt: time.Now()}
	m.series[key] = s
	return s, nil
}

func (m *memSeriesRepo) GetByNameCI(_ context.Context, name string) (*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.series[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, &repositories.NotFoundError{Entity: "series", ID: name}
}

func (m *memSeriesRepo) GetAll(_ context.Context) ([]*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Series
	for _, s := range m.series {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSeriesRepo) ListByCategory(_ context.Context, category string) ([]*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Series
	for _, s := range m.series {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSeriesRepo) Categories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, s := range m.series {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out, nil
}

type memCardRepo struct {
	mu     sync.Mutex
	nextID int64
	cards  []*models.Card
}

func (m *memCardRepo) Ensure(_ context.Context, card *models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.SeriesID == card.SeriesID && c.Name == card.Name {
			*card = *c
			return nil
		}
	}
	m.nextID++
	card.ID = m.nextID
	stored := *card
	m.cards = append(m.cards, &stored)
	return nil
}

func (m *memCardRepo) GetByID(_ context.Context, id int64) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "card", ID: id}
}

func (m *memCardRepo) ListBySeries(_ context.Context, seriesID int64) ([]*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Card
	for _, c := range m.cards {
		if c.SeriesID == seriesID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memCardRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards), nil
}

func (m *memCardRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cards {
		if c.ID == id {
			m.cards = append(m.cards[:i], m.cards[i+1:]...)
			return nil
		}
	}
	return &repositories.NotFoundError{Entity: "card", ID: id}
}

func TestRunBuildsCatalogInLexicographicOrder(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tree: map[string]map[string][]string{
		"animes": {
			"cowboy_bebop": {"spike.png", "faye.jpg", "jet.jpeg"},
		},
		"jogos": {
			"chrono_trigger": {"crono.png"},
		},
	}}
	seriesRepo := newMemSeriesRepo()
	cardRepo := &memCardRepo{}

	stats, err := New(store, seriesRepo, cardRepo, 2).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 2, stats.Series)
	assert.Equal(t, 4, stats.Cards)
	assert.Zero(t, stats.SkippedSeries)

	series, err := seriesRepo.GetByNameCI(ctx, "cowboy_bebop")
	require.NoError(t, err)
	assert.Equal(t, "animes", series.Category)

	cards, err := cardRepo.ListBySeries(ctx, series.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	// faye.jpg < jet.jpeg < spike.png, regardless of listing order.
	assert.Equal(t, "faye", cards[0].Name)
	assert.Equal(t, 1, cards[0].Position)
	assert.Equal(t, "jet", cards[1].Name)
	assert.Equal(t, 2, cards[1].Position)
	assert.Equal(t, "spike", cards[2].Name)
	assert.Equal(t, 3, cards[2].Position)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tree: map[string]map[string][]string{
		"animes": {"trigun": {"vash.png", "wolfwood.png"}},
	}}
	seriesRepo := newMemSeriesRepo()
	cardRepo := &memCardRepo{}
	ing := New(store, seriesRepo, cardRepo, 1)

	_, err := ing.Run(ctx)
	require.NoError(t, err)
	firstCount, _ := cardRepo.Count(ctx)

	_, err = ing.Run(ctx)
	require.NoError(t, err)
	secondCount, _ := cardRepo.Count(ctx)

	assert.Equal(t, firstCount, secondCount, "re-ingestion duplicated cards")

	series, _ := seriesRepo.GetByNameCI(ctx, "trigun")
	cards, _ := cardRepo.ListBySeries(ctx, series.ID)
	require.Len(t, cards, 2)
	assert.Equal(t, 1, cards[0].Position)
	assert.Equal(t, 2, cards[1].Position)
}

func TestRunSkipsFailingSeries(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		tree: map[string]map[string][]string{
			"animes": {
				"good_series":   {"a.png"},
				"broken_series": {"b.png"},
			},
		},
		failing: map[string]bool{"broken_series": true},
	}
	seriesRepo := newMemSeriesRepo()
	cardRepo := &memCardRepo{}

	stats, err := New(store, seriesRepo, cardRepo, 2).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 1, stats.SkippedSeries)

	_, err = seriesRepo.GetByNameCI(ctx, "good_series")
	assert.NoError(t, err)
	_, err = seriesRepo.GetByNameCI(ctx, "broken_series")
	assert.Error(t, err)
}

func TestRunIgnoresNonImageFiles(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tree: map[string]map[string][]string{
		"animes": {"mixed": {"card.png", "notes.txt", "thumbs.db", "anim.gif", "pic.webp"}},
	}}
	seriesRepo := newMemSeriesRepo()
	cardRepo := &memCardRepo{}

	stats, err := New(store, seriesRepo, cardRepo, 1).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Cards)

	series, _ := seriesRepo.GetByNameCI(ctx, "mixed")
	cards, _ := cardRepo.ListBySeries(ctx, series.ID)
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"card", "anim", "pic"}, names)
}

func TestRunSkipsEmptySeries(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tree: map[string]map[string][]string{
		"animes": {"empty": {}, "full": {"x.png"}},
	}}
	seriesRepo := newMemSeriesRepo()
	cardRepo := &memCardRepo{}

	_, err := New(store, seriesRepo, cardRepo, 1).Run(ctx)
	require.NoError(t, err)

	// A directory with no images creates no series row.
	_, err = seriesRepo.GetByNameCI(ctx, "empty")
	assert.Error(t, err)
	_, err = seriesRepo.GetByNameCI(ctx, "full")
	assert.NoError(t, err)
}
