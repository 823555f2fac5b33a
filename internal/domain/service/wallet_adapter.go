package service

import (
	"context"

	"yield-wallet/internal/domain/entity"
)

// WalletAdapter is the uniform contract over one wallet integration.
type WalletAdapter interface {
	Kind() entity.WalletKind

	// Connect prompts the wallet and binds the first account.
	Connect(ctx context.Context) (entity.ConnectedWallet, error)

	// Disconnect clears the binding. Provider failures are logged, never returned.
	Disconnect(ctx context.Context)

	// Balance returns a decimal string in native units, "0" on any failure.
	Balance(ctx context.Context) string

	IsConnected() bool
	Address() (string, bool)
}

// ChainSwitcher is implemented by adapters that can change the wallet's active chain.
type ChainSwitcher interface {
	SwitchChain(ctx context.Context, chainID int64) error
}

// Restorer is implemented by adapters that can re-bind an authorized account without prompting.
type Restorer interface {
	Restore(ctx context.Context) (entity.ConnectedWallet, bool, error)
}

// AdapterFactory builds a fresh adapter per wallet kind.
type AdapterFactory interface {
	Create(kind entity.WalletKind) (WalletAdapter, error)
}
