package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"multipos/internal/apperr"
)

func TestTranslate(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translate(nil, "shop", ""))
	})

	t.Run("record not found", func(t *testing.T) {
		var nf *apperr.NotFoundError
		require.ErrorAs(t, translate(gorm.ErrRecordNotFound, "shop", "42"), &nf)
		assert.Equal(t, "shop", nf.Resource)
		assert.Equal(t, "42", nf.ID)
	})

	t.Run("pg unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_inventory_product_shop"})
		var dk *apperr.DuplicateKeyError
		require.ErrorAs(t, translate(err, "inventory record", ""), &dk)
		assert.Equal(t, "inventory record already exists", dk.Error())
	})

	t.Run("gorm duplicated key", func(t *testing.T) {
		var dk *apperr.DuplicateKeyError
		assert.ErrorAs(t, translate(gorm.ErrDuplicatedKey, "product", ""), &dk)
	})

	t.Run("other errors become storage failures", func(t *testing.T) {
		cause := errors.New("conn refused")
		var se *apperr.StorageError
		require.ErrorAs(t, translate(cause, "sale", ""), &se)
		assert.ErrorIs(t, se, cause)
	})

	t.Run("typed errors pass through", func(t *testing.T) {
		v := apperr.NewValidation("bad")
		assert.Same(t, v, translate(v, "sale", ""))
	})
}
