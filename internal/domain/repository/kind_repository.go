package repository

import (
	"context"

	"yield-wallet/internal/domain/entity"
)

// KindRepository persists the kind of the last connected wallet under a single key.
type KindRepository interface {
	// Load returns the raw persisted value. Callers parse it so garbled values can be cleared.
	Load(ctx context.Context) (string, bool, error)

	// Save stores kind, replacing any previous value.
	Save(ctx context.Context, kind entity.WalletKind) error

	// Clear removes the key. Clearing an absent key is not an error.
	Clear(ctx context.Context) error
}
