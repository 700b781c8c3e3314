// cmd/migrate/main.go
// Imports the legacy document-store JSON export (one file per collection)
// into the local PostgreSQL database.
//
// Usage:
//
//	go run ./cmd/migrate -users users.json -races races.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/racecal/config"
	bundb "github.com/padraicbc/racecal/db"
	"github.com/padraicbc/racecal/models"
)

const batchSize = 500

// legacyRace matches the exported document shape; field names follow the
// old collection, not the current column names.
type legacyRace struct {
	ID             string           `json:"_id"`
	IDOwner        string           `json:"idowner"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Length         float64          `json:"length"`
	Data           time.Time        `json:"data"`
	PrincipalImage string           `json:"principalimage"`
	OtherImage     []string         `json:"otherImage"`
	Typology       string           `json:"typology"`
	Latitude       *float64         `json:"latitude"`
	Longitude      *float64         `json:"longitude"`
	CreatedAt      time.Time        `json:"createdAt"`
	Comments       []models.Comment `json:"comments"`
	Likes          []models.Like    `json:"likes"`
}

type legacyUser struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Interests []string `json:"interests"`
}

func main() {
	usersPath := flag.String("users", "", "path to the users collection export")
	racesPath := flag.String("races", "", "path to the races collection export")
	flag.Parse()

	if *usersPath == "" && *racesPath == "" {
		log.Fatal("at least one of -users or -races is required")
	}

	ctx := context.Background()

	cfg := config.Load()
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	if *usersPath != "" {
		n, err := migrateUsers(ctx, pgDB, *usersPath)
		if err != nil {
			log.Fatalf("users: %v", err)
		}
		log.Printf("users: %d rows", n)
	}

	if *racesPath != "" {
		n, err := migrateRaces(ctx, pgDB, *racesPath)
		if err != nil {
			log.Fatalf("races: %v", err)
		}
		log.Printf("races: %d rows", n)
	}
}

func migrateUsers(ctx context.Context, db *bun.DB, path string) (int, error) {
	var legacy []legacyUser
	if err := readExport(path, &legacy); err != nil {
		return 0, err
	}

	users := make([]models.User, 0, len(legacy))
	for _, lu := range legacy {
		if lu.ID == "" {
			lu.ID = uuid.NewString()
		}
		if lu.Interests == nil {
			lu.Interests = []string{}
		}
		users = append(users, models.User{
			ID:        lu.ID,
			Name:      lu.Name,
			Email:     lu.Email,
			Interests: lu.Interests,
		})
	}

	return insertBatches(ctx, db, users, "id")
}

func migrateRaces(ctx context.Context, db *bun.DB, path string) (int, error) {
	var legacy []legacyRace
	if err := readExport(path, &legacy); err != nil {
		return 0, err
	}

	races := make([]models.Race, 0, len(legacy))
	for _, lr := range legacy {
		if lr.ID == "" {
			lr.ID = uuid.NewString()
		}
		if lr.CreatedAt.IsZero() {
			lr.CreatedAt = time.Now().UTC()
		}
		if lr.OtherImage == nil {
			lr.OtherImage = []string{}
		}
		if lr.Comments == nil {
			lr.Comments = []models.Comment{}
		}
		if lr.Likes == nil {
			lr.Likes = []models.Like{}
		}
		races = append(races, models.Race{
			ID:             lr.ID,
			IDOwner:        lr.IDOwner,
			Title:          lr.Title,
			Description:    lr.Description,
			Length:         lr.Length,
			Data:           lr.Data,
			PrincipalImage: lr.PrincipalImage,
			OtherImage:     lr.OtherImage,
			Typology:       lr.Typology,
			Latitude:       lr.Latitude,
			Longitude:      lr.Longitude,
			CreatedAt:      lr.CreatedAt,
			Comments:       lr.Comments,
			Likes:          lr.Likes,
		})
	}

	return insertBatches(ctx, db, races, "id")
}

func readExport(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func insertBatches[T any](ctx context.Context, db *bun.DB, rows []T, conflictCol string) (int, error) {
	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		_, err := db.NewInsert().Model(&batch).
			On(fmt.Sprintf("CONFLICT (%s) DO NOTHING", conflictCol)).
			Exec(ctx)
		if err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}
