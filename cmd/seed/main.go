package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"convohub/config"
	"convohub/pkg/helpers"
)

type seedUser struct {
	Email    string
	FullName string
	Avatar   string
}

// Demo accounts for local development. All share the same password.
var seedUsers = []seedUser{
	{Email: "alice@example.com", FullName: "Alice Carter", Avatar: ""},
	{Email: "bob@example.com", FullName: "Bob Nguyen", Avatar: ""},
	{Email: "carol@example.com", FullName: "Carol Diaz", Avatar: ""},
}

const seedPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, u := range seedUsers {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash, full_name, avatar_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
			RETURNING id
		`, u.Email, hash, u.FullName, u.Avatar).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s name=%s\n", id, u.Email, u.FullName)
	}
	fmt.Printf("all seed users share password %q\n", seedPassword)
}
