package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/racecal/models"
)

// ErrNotFound is returned when no record matches the requested identifier.
var ErrNotFound = errors.New("store: not found")

// ErrMissingFields is returned by Insert when required race fields are absent.
var ErrMissingFields = errors.New("store: title, length and data are required")

// Races performs persistence operations for race documents. Constructing a
// race from an identifier is an explicit fetch (ByID) that either returns a
// fully populated document or ErrNotFound; there is no half-loaded state.
type Races struct {
	db *bun.DB
}

// NewRaces returns a race store over the given connection.
func NewRaces(db *bun.DB) *Races {
	return &Races{db: db}
}

// ByID fetches the single race matching id.
func (s *Races) ByID(ctx context.Context, id string) (*models.Race, error) {
	race := &models.Race{}
	err := s.db.NewSelect().Model(race).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return race, nil
}

// All returns every race, unordered. Ordering is applied by the caller.
func (s *Races) All(ctx context.Context) ([]models.Race, error) {
	var races []models.Race
	if err := s.db.NewSelect().Model(&races).Scan(ctx); err != nil {
		return nil, err
	}
	if races == nil {
		races = []models.Race{}
	}
	return races, nil
}

// Insert persists a new race. The store assigns the identifier and defaults
// createdAt to now; both are mirrored back onto the passed document.
func (s *Races) Insert(ctx context.Context, race *models.Race) error {
	if race.Title == "" || race.Length == 0 || race.Data.IsZero() {
		return ErrMissingFields
	}

	race.ID = uuid.NewString()
	if race.CreatedAt.IsZero() {
		race.CreatedAt = time.Now().UTC()
	}
	if race.OtherImage == nil {
		race.OtherImage = []string{}
	}
	if race.Comments == nil {
		race.Comments = []models.Comment{}
	}
	if race.Likes == nil {
		race.Likes = []models.Like{}
	}

	_, err := s.db.NewInsert().Model(race).Exec(ctx)
	return err
}

// Update loads the race, merges the patch on behalf of actorID and persists
// the result, returning the updated document. Embedded comment/like lists
// are merged, never replaced wholesale, so a likes-only patch cannot erase
// comments written in between.
func (s *Races) Update(ctx context.Context, id string, patch models.RacePatch, actorID string) (*models.Race, error) {
	race, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	race.ApplyPatch(patch, actorID, time.Now().UTC())

	_, err = s.db.NewUpdate().Model(race).
		Column("title", "description", "length", "data", "principalimage",
			"otherimage", "typology", "latitude", "longitude", "comments", "likes").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return race, nil
}

// Delete removes the race matching id. Deleting an identifier with no
// matching record is not an error.
func (s *Races) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().Model((*models.Race)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
