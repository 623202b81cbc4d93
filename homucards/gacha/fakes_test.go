package gacha

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
)

// In-memory repository fakes. They mirror the storage semantics the real
// repositories get from postgres: case-insensitive series lookup, atomic
// grant increments, name-ordered inventory pages.

type fakeSeriesRepo struct {
	mu     sync.Mutex
	nextID int64
	series []*models.Series
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{}
}

func (f *fakeSeriesRepo) Ensure(_ context.Context, name, category string) (*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.series {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	f.nextID++
	s := &models.Series{ID: f.nextID, Name: name, Category: category, CreatedAt: time.Now()}
	f.series = append(f.series, s)
	return s, nil
}

func (f *fakeSeriesRepo) GetByNameCI(_ context.Context, name string) (*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.series {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "series", ID: name}
}

func (f *fakeSeriesRepo) GetAll(_ context.Context) ([]*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*models.Series{}, f.series...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSeriesRepo) ListByCategory(_ context.Context, category string) ([]*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Series
	for _, s := range f.series {
		if s.Category == category {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSeriesRepo) Categories(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, s := range f.series {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeCardRepo struct {
	mu     sync.Mutex
	nextID int64
	cards  []*models.Card
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{}
}

func (f *fakeCardRepo) Ensure(_ context.Context, card *models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cards {
		if c.SeriesID == card.SeriesID && c.Name == card.Name {
			*card = *c
			return nil
		}
	}
	f.nextID++
	card.ID = f.nextID
	stored := *card
	f.cards = append(f.cards, &stored)
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id int64) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "card", ID: id}
}

func (f *fakeCardRepo) ListBySeries(_ context.Context, seriesID int64) ([]*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Card
	for _, c := range f.cards {
		if c.SeriesID == seriesID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeCardRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cards), nil
}

func (f *fakeCardRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cards {
		if c.ID == id {
			f.cards = append(f.cards[:i], f.cards[i+1:]...)
			return nil
		}
	}
	return &repositories.NotFoundError{Entity: "card", ID: id}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, &repositories.NotFoundError{Entity: "user", ID: userID}
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "user", ID: username}
}

func (f *fakeUserRepo) RegisterUsername(_ context.Context, userID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok && u.HasUsername() {
		return &repositories.ConflictError{Entity: "user", Field: "username", Value: u.Username}
	}
	for id, u := range f.users {
		if id != userID && strings.EqualFold(u.Username, username) && u.Username != "" {
			return &repositories.ConflictError{Entity: "username", Field: "name", Value: username}
		}
	}
	u, ok := f.users[userID]
	if !ok {
		u = &models.User{UserID: userID, CreatedAt: time.Now()}
		f.users[userID] = u
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) bumpPulls(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		u = &models.User{UserID: userID, CreatedAt: time.Now()}
		f.users[userID] = u
	}
	u.TotalPulls++
	u.UpdatedAt = time.Now()
}

type fakeUserCardRepo struct {
	mu         sync.Mutex
	quantities map[string]map[int64]int64
	cards      *fakeCardRepo
	users      *fakeUserRepo
}

func newFakeUserCardRepo(cards *fakeCardRepo, users *fakeUserRepo) *fakeUserCardRepo {
	return &fakeUserCardRepo{
		quantities: map[string]map[int64]int64{},
		cards:      cards,
		users:      users,
	}
}

func (f *fakeUserCardRepo) Grant(_ context.Context, userID string, cardID int64) (int64, error) {
	f.mu.Lock()
	if f.quantities[userID] == nil {
		f.quantities[userID] = map[int64]int64{}
	}
	f.quantities[userID][cardID]++
	quantity := f.quantities[userID][cardID]
	f.mu.Unlock()

	f.users.bumpPulls(userID)
	return quantity, nil
}

func (f *fakeUserCardRepo) Get(_ context.Context, userID string, cardID int64) (*models.UserCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.quantities[userID][cardID]; ok {
		return &models.UserCard{UserID: userID, CardID: cardID, Quantity: q}, nil
	}
	return nil, &repositories.NotFoundError{Entity: "user_card", ID: cardID}
}

func (f *fakeUserCardRepo) PageByUser(ctx context.Context, userID string, limit, offset int) ([]models.InventoryEntry, int, error) {
	f.mu.Lock()
	owned := make(map[int64]int64, len(f.quantities[userID]))
	for cardID, q := range f.quantities[userID] {
		owned[cardID] = q
	}
	f.mu.Unlock()

	var all []models.InventoryEntry
	for cardID, q := range owned {
		card, err := f.cards.GetByID(ctx, cardID)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, models.InventoryEntry{CardID: cardID, CardName: card.Name, Quantity: q})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CardName < all[j].CardName })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeUserCardRepo) CountByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.quantities[userID]), nil
}

// fixture builds a service over the fakes with one seeded series.
type fixture struct {
	seriesRepo *fakeSeriesRepo
	cardRepo   *fakeCardRepo
	userRepo   *fakeUserRepo
	ledger     *fakeUserCardRepo
	engine     *Engine
	service    *Service
}

func newFixture(perPage int) *fixture {
	seriesRepo := newFakeSeriesRepo()
	cardRepo := newFakeCardRepo()
	userRepo := newFakeUserRepo()
	ledger := newFakeUserCardRepo(cardRepo, userRepo)
	engine := NewEngine(seriesRepo, cardRepo)
	return &fixture{
		seriesRepo: seriesRepo,
		cardRepo:   cardRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		engine:     engine,
		service:    NewService(engine, userRepo, ledger, perPage),
	}
}

func (f *fixture) seedSeries(ctx context.Context, name, category string, cardNames ...string) *models.Series {
	series, _ := f.seriesRepo.Ensure(ctx, name, category)
	for i, cardName := range cardNames {
		_ = f.cardRepo.Ensure(ctx, &models.Card{
			SeriesID: series.ID,
			Name:     cardName,
			Filename: cardName + ".png",
			Position: i + 1,
		})
	}
	return series
}
