package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrorUnwraps(t *testing.T) {
	err := NewFieldError("number", ErrMissingField, "El número del apartamento es requerido")
	wrapped := fmt.Errorf("create apartment: %w", err)

	assert.ErrorIs(t, wrapped, ErrMissingField)
	assert.NotErrorIs(t, wrapped, ErrTooLong)

	var fe *FieldError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "number", fe.Field)
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		name     string
		err      *RemoteError
		notFound bool
		message  string
	}{
		{
			name:    "server message passes through",
			err:     &RemoteError{Op: "create apartment", Status: 409, Message: "Número duplicado"},
			message: "Número duplicado",
		},
		{
			name:     "404 matches ErrNotFound",
			err:      &RemoteError{Op: "get contract", Status: 404},
			notFound: true,
			message:  "fallback",
		},
		{
			name:    "network failure has no message",
			err:     &RemoteError{Op: "list apartments", Err: errors.New("connection refused")},
			message: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, ErrRemoteFailure)
			assert.Equal(t, tt.notFound, errors.Is(tt.err, ErrNotFound))
			assert.Equal(t, tt.message, RemoteMessage(tt.err, "fallback"))
		})
	}
}

func TestRemoteMessageNonRemote(t *testing.T) {
	assert.Equal(t, "fallback", RemoteMessage(errors.New("boom"), "fallback"))
}
