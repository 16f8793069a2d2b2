package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"multipos/internal/apperr"
)

const pgUniqueViolation = "23505"

// translate maps driver and ORM errors onto the typed business errors.
// Anything it does not recognise becomes a StorageError.
func translate(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if apperr.IsTyped(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NewNotFound(resource, id)
	}
	if IsUniqueViolation(err) {
		return apperr.NewDuplicateKey(resource, "")
	}
	return apperr.Storage(resource, err)
}

// IsUniqueViolation reports a PostgreSQL unique constraint violation, whether
// it surfaces as a raw pgconn error or through gorm's TranslateError.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
