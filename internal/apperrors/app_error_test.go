package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := fmt.Errorf("create link: %w", ErrCodeTaken.WithCause(cause))

	assert.ErrorIs(t, err, ErrCodeTaken)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.Nil(t, ErrCodeTaken.Cause, "WithCause must not mutate the shared value")
}

func TestFrom(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, From(fmt.Errorf("wrap: %w", ErrLinkNotFound)).Code)

	sys := From(errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, sys.Code)
	assert.Equal(t, "error.internal", sys.Key)
	assert.Contains(t, sys.Error(), "connection refused")
}
