package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	transport := &TransportError{Op: "forecast", StatusCode: 503, Err: errors.New("unavailable")}

	assert.True(t, IsRetryable(transport))
	assert.True(t, IsRetryable(fmt.Errorf("fetch: %w", transport)))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(&NotFoundError{Place: "Atlantis"}))
	assert.False(t, IsRetryable(&GeolocationError{Reason: GeolocationDenied, Message: "User denied"}))
	assert.False(t, IsRetryable(ErrGeolocationUnavailable))
	assert.False(t, IsRetryable(&ValidationError{Field: "q", Reason: "empty"}))
	assert.False(t, IsRetryable(&TransportError{Op: "forecast", Err: context.Canceled}))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&NotFoundError{Place: "Atlantis"}, "not_found"},
		{fmt.Errorf("resolve: %w", &NotFoundError{Place: "Atlantis"}), "not_found"},
		{ErrGeolocationUnavailable, "geolocation_unavailable"},
		{&GeolocationError{Reason: GeolocationTimeout, Message: "Timeout expired"}, "geolocation_denied"},
		{&ValidationError{Field: "q", Reason: "empty"}, "invalid_request"},
		{&TransportError{Op: "search", Err: errors.New("dial tcp")}, "transport"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "%v", tt.err)
	}
}

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Place: "Atlantis"}
	assert.Equal(t, `Cidade "Atlantis" não encontrada`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, MessageNotFound, UserMessage(&NotFoundError{Place: "Atlantis"}))
	assert.Equal(t, MessageFailure, UserMessage(&TransportError{Op: "forecast", StatusCode: 500, Err: errors.New("x")}))
	assert.Equal(t, MessageFailure, UserMessage(errors.New("boom")))
	assert.Equal(t, MessageGeolocationUnavailable, UserMessage(ErrGeolocationUnavailable))
	assert.Equal(t, MessageGeolocationUnavailable, UserMessage(fmt.Errorf("position: %w", ErrGeolocationUnavailable)))

	geo := fmt.Errorf("position: %w", &GeolocationError{Reason: GeolocationDenied, Message: "User denied Geolocation"})
	assert.Equal(t, "Erro ao obter localização: User denied Geolocation", UserMessage(geo))

	val := fmt.Errorf("search: %w", &ValidationError{Field: "q", Reason: "must not be empty"})
	assert.Equal(t, "invalid q: must not be empty", UserMessage(val))
}

func TestSentinelErrors_AreLowercase(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrGeolocationUnavailable, ErrGeolocationDenied} {
		msg := err.Error()
		assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], msg)
		assert.NotContains(t, msg, "Geolocalização", msg)
	}
}
