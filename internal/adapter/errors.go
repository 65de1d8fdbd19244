package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("transport failure")
	// ErrNoRoom is returned by room-scoped calls before SetRoom.
	ErrNoRoom = errors.New("no room selected")
)

// IsRetryable reports whether err is worth replaying later: the request never
// reached the authority or the authority failed on its side. Rejections (4xx)
// are final.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrInternalServerError) ||
		errors.Is(err, ErrBadGateway) ||
		errors.Is(err, ErrServiceUnavailable)
}
