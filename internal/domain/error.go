package domain

import (
	"errors"
	"fmt"

	"yield-wallet/internal/domain/entity"
)

var (
	// ErrProviderNotInstalled means the wallet's provider is absent from the environment.
	ErrProviderNotInstalled = errors.New("provider not installed")

	// ErrUserRejected means the user declined the request in the wallet UI (EIP-1193 code 4001).
	ErrUserRejected = errors.New("user rejected the request")

	// ErrProviderError means the provider failed for a reason other than a user rejection.
	ErrProviderError = errors.New("provider error")

	// ErrUnsupportedWalletKind means the wallet kind is outside the closed set the factory knows.
	ErrUnsupportedWalletKind = errors.New("unsupported wallet kind")

	// ErrUnsupportedOperation means the connected adapter lacks the requested capability.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrChainNotSupported means the chain id is unknown to the registry or the wallet could not add it.
	ErrChainNotSupported = errors.New("chain not supported")

	// ErrNetworkSwitchFailed means no step of the switch negotiation succeeded.
	ErrNetworkSwitchFailed = errors.New("network switch failed")

	// ErrRequestPending means an equivalent request is already in flight.
	ErrRequestPending = errors.New("request already pending")

	// ErrSessionSuperseded means a result arrived after the session moved on without it.
	ErrSessionSuperseded = errors.New("session superseded")
)

// WalletError is the error surfaced by adapters, the negotiator and the session store.
// Message is the text shown to the user; Err holds the taxonomy sentinels and Cause the
// underlying provider or transport failure.
type WalletError struct {
	Op      string
	Kind    entity.WalletKind
	Message string
	Err     []error
	Cause   error
}

func (e *WalletError) Error() string {
	return e.Message
}

func (e *WalletError) Unwrap() []error {
	errs := make([]error, 0, len(e.Err)+1)
	errs = append(errs, e.Err...)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewWalletError builds a WalletError tagged with one or more sentinels.
func NewWalletError(op string, kind entity.WalletKind, cause error, msg string, sentinels ...error) *WalletError {
	return &WalletError{Op: op, Kind: kind, Message: msg, Err: sentinels, Cause: cause}
}

// NotInstalled reports a missing provider with the wallet's display name.
func NotInstalled(op string, kind entity.WalletKind) *WalletError {
	return NewWalletError(op, kind, nil, fmt.Sprintf("%s not installed", kind.DisplayName()), ErrProviderNotInstalled)
}

// UserMessage returns the single message the session publishes for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var we *WalletError
	if errors.As(err, &we) {
		return we.Message
	}
	return err.Error()
}

// Code maps err to a stable taxonomy code for API consumers.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserRejected):
		return "USER_REJECTED"
	case errors.Is(err, ErrProviderNotInstalled):
		return "PROVIDER_NOT_INSTALLED"
	case errors.Is(err, ErrUnsupportedWalletKind):
		return "UNSUPPORTED_WALLET_KIND"
	case errors.Is(err, ErrUnsupportedOperation):
		return "UNSUPPORTED_OPERATION"
	case errors.Is(err, ErrChainNotSupported):
		return "CHAIN_NOT_SUPPORTED"
	case errors.Is(err, ErrNetworkSwitchFailed):
		return "NETWORK_SWITCH_FAILED"
	case errors.Is(err, ErrRequestPending):
		return "REQUEST_PENDING"
	case errors.Is(err, ErrSessionSuperseded):
		return "SESSION_SUPERSEDED"
	case errors.Is(err, ErrProviderError):
		return "PROVIDER_ERROR"
	default:
		return "INTERNAL"
	}
}
