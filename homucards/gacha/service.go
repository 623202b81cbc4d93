package gacha

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,15}$`)

// GrantResult is everything a caller needs to announce a pull: the card,
// its series, and the quantity the user owns after this copy was counted.
type GrantResult struct {
	CardID        int64
	CardName      string
	Filename      string
	SeriesName    string
	Category      string
	QuantityAfter int64
}

// InventoryPage is one clamped page of a user's collection.
type InventoryPage struct {
	Entries    []models.InventoryEntry
	Page       int
	TotalCards int
	PerPage    int
}

// Profile aggregates a user's public stats.
type Profile struct {
	UserID        string
	Username      string
	TotalPulls    int64
	DistinctCards int
}

// Service is the high-level card inventory API: pulls, inventory paging,
// username registration. Transports call this and never touch repositories
// directly.
type Service struct {
	engine    *Engine
	users     repositories.UserRepository
	userCards repositories.UserCardRepository
	perPage   int
}

func NewService(engine *Engine, users repositories.UserRepository, userCards repositories.UserCardRepository, perPage int) *Service {
	return &Service{
		engine:    engine,
		users:     users,
		userCards: userCards,
		perPage:   perPage,
	}
}

// Pull draws one random card from the named series and grants it to the
// user. The grant and the lifetime pull counter commit together; the
// returned quantity includes the copy just granted.
func (s *Service) Pull(ctx context.Context, userID, seriesName string) (*GrantResult, error) {
	card, series, err := s.engine.Draw(ctx, seriesName)
	if err != nil {
		return nil, err
	}

	quantity, err := s.userCards.Grant(ctx, userID, card.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Card granted",
		slog.String("type", "gacha"),
		slog.String("user_id", userID),
		slog.String("series", series.Name),
		slog.String("card", card.Name),
		slog.Int64("quantity", quantity),
	)

	return &GrantResult{
		CardID:        card.ID,
		CardName:      card.Name,
		Filename:      card.Filename,
		SeriesName:    series.Name,
		Category:      series.Category,
		QuantityAfter: quantity,
	}, nil
}

// Page returns the requested inventory page. Page numbers are zero-based
// and clamped: negatives become page 0, and a page past the end comes back
// with no entries rather than an error.
func (s *Service) Page(ctx context.Context, userID string, page int) (*InventoryPage, error) {
	if page < 0 {
		page = 0
	}

	entries, total, err := s.userCards.PageByUser(ctx, userID, s.perPage, page*s.perPage)
	if err != nil {
		return nil, err
	}

	return &InventoryPage{
		Entries:    entries,
		Page:       page,
		TotalCards: total,
		PerPage:    s.perPage,
	}, nil
}

// PageCount returns how many inventory pages the user currently fills.
func (p *InventoryPage) PageCount() int {
	if p.TotalCards == 0 {
		return 1
	}
	return (p.TotalCards + p.PerPage - 1) / p.PerPage
}

// RegisterUsername validates and claims a username for the user. The format
// gate runs before any storage work; uniqueness and the one-time rule are
// enforced by the user repository.
func (s *Service) RegisterUsername(ctx context.Context, userID, username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	err := s.users.RegisterUsername(ctx, userID, username)
	if err == nil {
		return nil
	}
	if repositories.IsConflict(err) {
		// Distinguish "you already picked one" from "someone else has it".
		if user, getErr := s.users.GetByID(ctx, userID); getErr == nil && user.HasUsername() {
			return ErrUsernameSet
		}
		return ErrUsernameTaken
	}
	return err
}

// Profile returns the user's stats, or zero values for a user who has
// never interacted.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	profile := &Profile{UserID: userID}

	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		profile.Username = user.Username
		profile.TotalPulls = user.TotalPulls
	case repositories.IsNotFound(err):
		// never pulled, never registered
	default:
		return nil, err
	}

	distinct, err := s.userCards.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.DistinctCards = distinct

	return profile, nil
}
