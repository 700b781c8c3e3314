// cmd/adduser/main.go
// Creates or updates a user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -name "Mario Rossi" -email mario@example.com -password testing -interests trail,skyrace
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/racecal/config"
	bundb "github.com/padraicbc/racecal/db"
	"github.com/padraicbc/racecal/models"
)

func main() {
	name := flag.String("name", "", "display name (required)")
	email := flag.String("email", "", "email (required)")
	password := flag.String("password", "", "plain-text password (required)")
	interests := flag.String("interests", "", "comma-separated interest labels")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("-name, -email and -password are required")
	}

	var labels []string
	for _, l := range strings.Split(*interests, ",") {
		if t := strings.TrimSpace(l); t != "" {
			labels = append(labels, t)
		}
	}
	if !models.ValidInterests(labels) {
		log.Fatalf("unknown interest label; valid: %s", strings.Join(models.Interests(), ", "))
	}
	if labels == nil {
		labels = []string{}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         *name,
		Email:        *email,
		Interests:    labels,
		PasswordHash: string(hash),
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, interests = EXCLUDED.interests, password_hash = EXCLUDED.password_hash").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("user %q saved\n", *email)
}
