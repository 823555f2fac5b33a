package service

import (
	"context"
	"encoding/json"

	"yield-wallet/internal/domain/entity"
)

// EnvironmentProbe reports which wallet providers the host environment exposes.
// Each accessor returns false when the capability is absent.
type EnvironmentProbe interface {
	// Available is false when there is no wallet host at all (the server-side render case).
	Available() bool
	EVM() (EVMProvider, bool)
	HashPack() (HashPackProvider, bool)
	Blade() (BladeProvider, bool)
	Universal() (UniversalProvider, bool)
}

// EVMRequester sends EIP-1193 requests.
type EVMRequester interface {
	Request(ctx context.Context, req entity.EVMRequest) (json.RawMessage, error)
}

// EVMProvider is an injected EVM provider.
type EVMProvider interface {
	EVMRequester
	IsMetaMask() bool
}

// UniversalProvider is a WalletConnect universal provider speaking the eip155 namespace.
type UniversalProvider interface {
	EVMRequester
	Disconnect(ctx context.Context) error
}

// HashPackProvider is the HashPack extension connector.
type HashPackProvider interface {
	Init(ctx context.Context) error
	ConnectToLocalWallet(ctx context.Context) (entity.HederaAccount, error)
	Disconnect(ctx context.Context) error
}

// BladeProvider is the Blade extension connector.
type BladeProvider interface {
	Connect(ctx context.Context) (entity.HederaAccount, error)
	Disconnect(ctx context.Context) error
}

// HederaBalanceSource resolves HBAR balances for Hedera accounts.
type HederaBalanceSource interface {
	AccountBalance(ctx context.Context, accountID string) (string, error)
}
