package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"cafe-ordering/internal/domain"
)

func TestBillUpsertError(t *testing.T) {
	dup := fmt.Errorf("scan: %w", &pgconn.PgError{Code: "23505", ConstraintName: "table_bills_active_uq"})
	err := billUpsertError(dup, 4)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "table 4")

	err = billUpsertError(errors.New("conn reset"), 4)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "failed to upsert bill")

	other := &pgconn.PgError{Code: "23503"}
	assert.False(t, isUniqueViolation(other))
}
