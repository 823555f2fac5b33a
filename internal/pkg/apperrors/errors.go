package apperrors

import "errors"

// Infrastructure errors shared by transports, stores and the HTTP layer. Wallet-level
// failures use the taxonomy in internal/domain and may carry one of these alongside.
var (
	// ErrNotFound means a looked-up record, such as a chainlist entry, does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput means a caller passed a malformed value (bad chain id, bad URL, unencodable params).
	ErrInvalidInput = errors.New("invalid input provided")

	// ErrUnauthorized means the wallet refused because this site holds no account permission (EIP-1193 4100).
	ErrUnauthorized = errors.New("unauthorized access")

	// ErrExternalServiceFailure means a bridge, mirror node or catalog call failed or answered garbage.
	ErrExternalServiceFailure = errors.New("external service interaction failed")

	// ErrTimeout means a bridge or upstream call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrInternal means local state (such as the session file) could not be read or written.
	ErrInternal = errors.New("internal system error")

	// ErrConflict means the request collides with one already in flight or with a newer session.
	ErrConflict = errors.New("request conflicts with current state")
)
