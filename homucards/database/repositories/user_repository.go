package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// RegisterUsername claims a username for the user. The claim is one-time:
	// it fails with a ConflictError once the user already has a name, or when
	// another user holds the name under case-insensitive comparison.
	RegisterUsername(ctx context.Context, userID, username string) error
}

type userRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db),
		db:             db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user", userID, err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("LOWER(username) = LOWER(?)", username).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user", username, err)
	}
	return user, nil
}

func (r *userRepository) RegisterUsername(ctx context.Context, userID, username string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(models.User)
		err := tx.NewSelect().
			Model(existing).
			Where("user_id = ?", userID).
			Scan(ctx)
		switch {
		case err == nil:
			if existing.HasUsername() {
				return &ConflictError{Entity: "user", Field: "username", Value: existing.Username}
			}
		case errors.Is(err, sql.ErrNoRows):
			// first interaction, row is created below
		default:
			return r.HandleErrorWithID("register_username", "user", userID, err)
		}

		now := time.Now()
		user := &models.User{
			UserID:    userID,
			Username:  username,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = tx.NewInsert().
			Model(user).
			On("CONFLICT (user_id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			// the partial unique index on LOWER(username) rejects duplicates
			if isUniqueViolation(err) {
				slog.Warn("Username already taken",
					slog.String("type", "db"),
					slog.String("operation", "register_username"),
					slog.String("username", username))
				return &ConflictError{Entity: "username", Field: "name", Value: username}
			}
			return r.HandleErrorWithID("register_username", "user", userID, err)
		}
		return nil
	})
}
