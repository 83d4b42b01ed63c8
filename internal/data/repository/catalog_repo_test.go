package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSearchFilter(t *testing.T) {
	clause, args := searchFilter("  ", "name", "city")
	assert.Equal(t, "TRUE", clause)
	assert.Empty(t, args)

	clause, args = searchFilter(" bali ", "name", "city")
	assert.Equal(t, "(name ILIKE $1 OR city ILIKE $1)", clause)
	assert.Equal(t, []any{"%bali%"}, args)
}

func TestPageArgs(t *testing.T) {
	suffix, args := pageArgs(nil, 10, 20)
	assert.Equal(t, " LIMIT $1 OFFSET $2", suffix)
	assert.Equal(t, []any{10, 20}, args)

	suffix, args = pageArgs([]any{"%bali%"}, 5, 0)
	assert.Equal(t, " LIMIT $2 OFFSET $3", suffix)
	assert.Equal(t, []any{"%bali%", 5, 0}, args)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert booking: %w", unique)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	restrict := &pgconn.PgError{Code: pgForeignKeyViolation}
	assert.True(t, isForeignKeyViolation(fmt.Errorf("delete hotel: %w", restrict)))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, isForeignKeyViolation(nil))
}

func TestWithCondition(t *testing.T) {
	assert.Equal(t, "TRUE", withCondition("TRUE", ""))
	assert.Equal(t, "TRUE AND rating >= 4", withCondition("TRUE", popularDestination))

	filter, _ := searchFilter("inn", hotelSearchColumns...)
	assert.Equal(t, "(name ILIKE $1 OR location ILIKE $1) AND available_rooms > 0", withCondition(filter, availableHotel))
}
