// Copyright (c) 2026 ComicZone. All rights reserved.

// Command seed bootstraps the first administrator account.
//
// Every moderation endpoint requires an admin or moderator role, and roles
// can only be granted by an existing admin, so a fresh deployment needs one
// seeded out of band:
//
//	seed -username admin -email admin@comiczone.com -password <secret>
//
// The command is idempotent: if the email is already registered, the account
// is promoted to admin instead of failing on the unique constraint.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/config"
	"github.com/comiczone/comiczone/internal/platform/migration"
	pgstore "github.com/comiczone/comiczone/internal/platform/postgres"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/users/auth"
	"github.com/comiczone/comiczone/pkg/uuid"
)

func main() {
	username := flag.String("username", "admin", "admin account username")
	email := flag.String("email", "", "admin account email (required)")
	password := flag.String("password", "", "admin account password (required)")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", "comiczone-seed"))

	if *email == "" || *password == "" {
		log.Error("both -email and -password are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	// Safe to run against a live database; already-applied migrations are skipped.
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	users := auth.NewUserRepository(pool)

	existing, err := users.FindByEmail(ctx, *email)
	switch {
	case err == nil:
		existing.Role = sec.RoleAdmin
		must(log, users.Update(ctx, existing), "promote existing account")
		log.Info("account_promoted_to_admin",
			slog.String("user_id", existing.ID),
			slog.String("email", existing.Email),
		)

	case apperr.IsNotFound(err):
		hash, err := sec.HashPassword(*password)
		must(log, err, "hash password")

		admin := &auth.User{
			ID:           uuid.New(),
			Username:     *username,
			Email:        *email,
			PasswordHash: hash,
			Role:         sec.RoleAdmin,
			IsVerified:   true,
		}
		must(log, users.Create(ctx, admin), "create admin account")
		log.Info("admin_account_created",
			slog.String("user_id", admin.ID),
			slog.String("email", admin.Email),
		)

	default:
		must(log, err, "look up existing account")
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("seed failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
