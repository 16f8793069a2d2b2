// seeduser creates or resets an admin account.
// Usage: go run ./cmd/seeduser -username admin -password secret
package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"multipos/internal/config"
	"multipos/internal/infra"
	"multipos/internal/model"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "password (min 8 characters)")
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "optional email")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password is required and must have at least 8 characters")
	}

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	user := model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if *email != "" {
		user.Email = email
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"password_hash": user.PasswordHash, "name": user.Name, "role": user.Role, "is_active": true}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}
	log.Info().Str("username", *username).Msg("admin user created or updated")
}
