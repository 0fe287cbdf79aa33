package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		kind error
	}{
		{"validation", NewValidationError("VALIDATION_ERROR", "bad %s", "input"), ErrValidation},
		{"authorization", NewAuthorizationError("FORBIDDEN", "no"), ErrAuthorization},
		{"not found", NewNotFoundError("NOT_FOUND", "missing"), ErrNotFound},
		{"invalid transition", NewInvalidTransitionError("INVALID_TRANSITION", "done"), ErrInvalidTransition},
		{"unauthenticated", NewUnauthenticatedError("UNAUTHORIZED", "who"), ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))

			wrapped := errors.Wrap(tt.err, "context")
			assert.True(t, errors.Is(wrapped, tt.kind))

			se, ok := AsServiceError(wrapped)
			require.True(t, ok)
			assert.Equal(t, tt.err.Code, se.Code)
		})
	}

	assert.Equal(t, "bad input", NewValidationError("X", "bad %s", "input").Error())
}

func TestAsServiceError_PlainError(t *testing.T) {
	_, ok := AsServiceError(errors.New("boom"))
	assert.False(t, ok)
}
