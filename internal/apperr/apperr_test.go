package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Auth("who are you"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{Conflict("already there"), http.StatusConflict},
		{Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("database operation failed", errors.New("connection reset by peer"))
	assert.Equal(t, "database operation failed", Message(err))
	assert.Contains(t, err.Error(), "connection reset by peer", "the full chain stays available for logs")
}

func TestMessageUntypedError(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("raw driver error")))
}

func TestStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("creating procedure: %w", Validation("unknown category"))
	assert.Equal(t, http.StatusBadRequest, Status(wrapped))
	assert.Equal(t, "unknown category", Message(wrapped))
	assert.True(t, IsKind(wrapped, KindValidation))
	assert.False(t, IsKind(wrapped, KindConflict))
}
