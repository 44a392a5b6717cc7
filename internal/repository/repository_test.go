package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cold brew", escapeLike("cold brew"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
}

func TestIsSkuViolation(t *testing.T) {
	t.Parallel()

	skuErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: skuUniqueConstraint}
	assert.True(t, isSkuViolation(skuErr))
	assert.True(t, isSkuViolation(fmt.Errorf("insert variant: %w", skuErr)))

	otherConstraint := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "products_pkey"}
	assert.False(t, isSkuViolation(otherConstraint))

	otherCode := &pgconn.PgError{Code: "23503", ConstraintName: skuUniqueConstraint}
	assert.False(t, isSkuViolation(otherCode))

	assert.False(t, isSkuViolation(errors.New("broken pipe")))
}
