package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/blogforge/blogforge/config"
	"github.com/blogforge/blogforge/pkg/helpers"
)

// Seeds the admin account and a couple of published starter posts so a
// fresh deployment has visible content.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the admin user")
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var email sql.NullString
	if cfg.AdminEmail != "" {
		email = sql.NullString{String: cfg.AdminEmail, Valid: true}
	}

	var adminID int64
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, 'ADMIN')
		ON CONFLICT (username) DO UPDATE SET role = 'ADMIN'
		RETURNING id
	`, cfg.AdminUsername, email, hash).Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}
	fmt.Printf("admin ensured: id=%d username=%s\n", adminID, cfg.AdminUsername)

	defaultPosts := []struct {
		title, content string
	}{
		{"Welcome to the blog!", "This is the first admin post. Enjoy the content and feel free to comment."},
		{"How commenting works", "Comments are open on every published post. Sign up, log in and join the discussion."},
	}

	for _, p := range defaultPosts {
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE title = $1)`, p.title).Scan(&exists); err != nil {
			log.Fatalf("failed to check post: %v", err)
		}
		if exists {
			continue
		}
		if _, err := db.Exec(`
			INSERT INTO posts (title, content, published, author_id)
			VALUES ($1, $2, true, $3)
		`, p.title, p.content, adminID); err != nil {
			log.Fatalf("failed to seed post: %v", err)
		}
		fmt.Printf("seeded post: %s\n", p.title)
	}
}
