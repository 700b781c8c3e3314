package handlers

import (
	"context"

	"github.com/padraicbc/racecal/models"
)

// RaceStore is the persistence surface the race handlers depend on.
// *store.Races satisfies it; tests substitute in-memory fakes.
type RaceStore interface {
	ByID(ctx context.Context, id string) (*models.Race, error)
	All(ctx context.Context) ([]models.Race, error)
	Insert(ctx context.Context, race *models.Race) error
	Update(ctx context.Context, id string, patch models.RacePatch, actorID string) (*models.Race, error)
	Delete(ctx context.Context, id string) error
}

// UserStore is the persistence surface the user and auth handlers depend on.
type UserStore interface {
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	races  RaceStore
	users  UserStore
	JWTKey []byte
}

// New creates a Handler with the given stores and JWT signing key.
func New(races RaceStore, users UserStore, jwtKey []byte) *Handler {
	return &Handler{races: races, users: users, JWTKey: jwtKey}
}
