package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestSQLStateChecks(t *testing.T) {
	unique := &pgconn.PgError{Code: sqlstateUniqueViolation}
	serialization := &pgconn.PgError{Code: sqlstateSerializationFailure}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, isUniqueViolation(serialization))

	assert.True(t, isSerializationFailure(serialization))
	assert.False(t, isSerializationFailure(unique))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

func TestMapInfra(t *testing.T) {
	assert.NoError(t, mapInfra(nil))

	err := mapInfra(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, model.ErrTimeout)

	err = mapInfra(errors.New("dial tcp 127.0.0.1:5432: connection refused"))
	assert.ErrorIs(t, err, model.ErrUnavailable)

	// Business errors pass through untouched.
	assert.ErrorIs(t, mapInfra(model.ErrNotFound), model.ErrNotFound)
}
