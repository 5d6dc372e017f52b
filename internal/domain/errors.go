package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound matches any *NotFoundError.
var ErrNotFound = errors.New("location not found")

// ErrGeolocationUnavailable is returned when no position provider exists.
var ErrGeolocationUnavailable = errors.New("geolocation is not supported on this device")

// ErrGeolocationDenied matches any *GeolocationError.
var ErrGeolocationDenied = errors.New("geolocation denied or timed out")

// TransportError reports a failure reaching an upstream API: network errors,
// non-2xx responses, open circuit breakers, and undecodable bodies.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError means geocoding returned no candidates for a place name.
type NotFoundError struct {
	Place string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Cidade %q não encontrada", e.Place)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// GeolocationReason distinguishes why a position read failed.
type GeolocationReason string

const (
	GeolocationDenied  GeolocationReason = "denied"
	GeolocationTimeout GeolocationReason = "timeout"
)

// GeolocationError is a provider-side refusal or timeout. Message is the
// provider's own text.
type GeolocationError struct {
	Reason  GeolocationReason
	Message string
}

func (e *GeolocationError) Error() string {
	return "Erro ao obter localização: " + e.Message
}

func (e *GeolocationError) Is(target error) bool { return target == ErrGeolocationDenied }

// ValidationError rejects malformed input before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsRetryable reports whether err is worth another attempt. Only transport
// failures qualify; context cancellation never does.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransportError
	return errors.As(err, &te)
}

// Error kinds reported by ErrorKind.
const (
	KindNotFound               = "not_found"
	KindGeolocationUnavailable = "geolocation_unavailable"
	KindGeolocationDenied      = "geolocation_denied"
	KindInvalidRequest         = "invalid_request"
	KindTransport              = "transport"
	KindInternal               = "internal"
)

// ErrorKind labels an error for API responses and metrics.
func ErrorKind(err error) string {
	var (
		te *TransportError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrGeolocationUnavailable):
		return KindGeolocationUnavailable
	case errors.Is(err, ErrGeolocationDenied):
		return KindGeolocationDenied
	case errors.As(err, &ve):
		return KindInvalidRequest
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindInternal
	}
}

// Fixed user-facing messages.
const (
	MessageNotFound               = "Cidade não encontrada"
	MessageFailure                = "Não foi possível carregar os dados do tempo. Tente novamente."
	MessageGeolocationUnavailable = "Geolocalização não é suportada neste dispositivo"
)

// UserMessage returns the text shown to the user for err. Geolocation and
// validation errors are shown verbatim.
func UserMessage(err error) string {
	var (
		ge *GeolocationError
		ve *ValidationError
	)
	switch ErrorKind(err) {
	case "":
		return ""
	case KindNotFound:
		return MessageNotFound
	case KindGeolocationUnavailable:
		return MessageGeolocationUnavailable
	case KindGeolocationDenied:
		if errors.As(err, &ge) {
			return ge.Error()
		}
		return err.Error()
	case KindInvalidRequest:
		errors.As(err, &ve)
		return ve.Error()
	default:
		return MessageFailure
	}
}
