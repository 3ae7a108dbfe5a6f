package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	original := NewConflict("already accepted", map[string]any{"id": "x"})
	converted := ToDomainError(original)
	require.NotNil(t, converted)
	assert.Equal(t, "CONFLICT", converted.Code)
	assert.Equal(t, http.StatusConflict, converted.HTTPStatus)
}

func TestToDomainErrorMapsMissingRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("loading account: %w", pgx.ErrNoRows))
	require.NotNil(t, converted)
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorSurfacesInternalMessage(t *testing.T) {
	converted := ToDomainError(errors.New("pool exhausted"))
	require.NotNil(t, converted)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, "pool exhausted", converted.Message)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
}

func TestIneligibleIsBadRequest(t *testing.T) {
	var domainErr *DomainError
	require.True(t, errors.As(NewIneligible("admin accounts cannot be moderated"), &domainErr))
	assert.Equal(t, "NOT_ELIGIBLE", domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
}
