package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/racecal/models"
)

// Users performs persistence operations for user profiles. Deleting a user
// does not cascade to races they own.
type Users struct {
	db *bun.DB
}

// NewUsers returns a user store over the given connection.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// ByID fetches the user matching id.
func (s *Users) ByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ByEmail fetches the user matching email, used by the sign-in flow.
func (s *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Insert persists a new user, assigning the identifier.
func (s *Users) Insert(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	if user.Interests == nil {
		user.Interests = []string{}
	}
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

// Update merges the patch into the stored profile and returns the result.
func (s *Users) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.ApplyPatch(patch)

	_, err = s.db.NewUpdate().Model(user).
		Column("name", "email", "interests").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user matching id. Unknown identifiers are not an error.
func (s *Users) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
