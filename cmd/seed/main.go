package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/igrotrend-auth/config"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	pginfra "github.com/oksasatya/igrotrend-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

// seed creates a verified ADMIN account for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if !cfg.IsDevelopment() {
		log.Fatal("seed only runs with APP_ENV=development")
	}
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	email := getenv("SEED_EMAIL", "admin@igrotrend.local")
	password := getenv("SEED_PASSWORD", "password123")
	username := getenv("SEED_USERNAME", "admin")

	hasher, err := helpers.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	u := &entity.User{
		Email:        email,
		Username:     username,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		EmailStatus:  entity.EmailVerified,
		Role:         entity.RoleAdmin,
	}
	err = users.Create(ctx, u)
	switch {
	case err == nil:
		fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, email, username, password)
	case errors.Is(err, repository.ErrDuplicateEmail), errors.Is(err, repository.ErrDuplicateUsername):
		existing, gerr := users.GetByEmail(ctx, email)
		if gerr != nil {
			log.Fatalf("user exists but cannot be loaded: %v", gerr)
		}
		if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			log.Fatalf("failed to reset password: %v", err)
		}
		if err := users.UpdateStatus(ctx, existing.ID, entity.EmailVerified); err != nil {
			log.Fatalf("failed to verify user: %v", err)
		}
		if err := users.UpdateRole(ctx, existing.ID, entity.RoleAdmin); err != nil {
			log.Fatalf("failed to assign admin role: %v", err)
		}
		fmt.Printf("updated existing user: id=%s email=%s\n", existing.ID, email)
	default:
		log.Fatalf("failed to seed user: %v", err)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
