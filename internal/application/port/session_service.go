package port

import (
	"context"

	"yield-wallet/internal/domain/entity"
)

// SessionService defines the wallet session operations exposed to delivery layers.
type SessionService interface {
	// State returns a snapshot of the current session.
	State() entity.SessionState

	// Subscribe registers fn for every subsequent state transition. The returned func unsubscribes.
	Subscribe(fn func(entity.SessionState)) func()

	// Restore silently rebinds the last persisted wallet kind, if any.
	Restore(ctx context.Context)

	ConnectWallet(ctx context.Context, kind entity.WalletKind) error
	DisconnectWallet(ctx context.Context) error
	SwitchChain(ctx context.Context, chainID int64) error

	// RefreshWallets re-runs detection and publishes the new list.
	RefreshWallets() []entity.WalletDescriptor

	// Balance returns the native balance of the bound account as a decimal string.
	Balance(ctx context.Context) string
}

// NetworkCatalog is the read side of the network registry.
type NetworkCatalog interface {
	All() []entity.NetworkDescriptor
	Lookup(chainID int64) (entity.NetworkDescriptor, bool)
}
