package hedera

import (
	"context"
	"encoding/json"
	"fmt"

	"yield-wallet/internal/adapter/provider/jsonrpc"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/pkg/apperrors"
)

// Bridge methods exposed by the Hedera wallet extension bridges.
const (
	methodHashPackInit       = "hashpack_init"
	methodHashPackConnect    = "hashpack_connectToLocalWallet"
	methodHashPackDisconnect = "hashpack_disconnect"
	methodBladeConnect       = "blade_connect"
	methodBladeDisconnect    = "blade_disconnect"
)

// Compile-time checks
var (
	_ domainService.HashPackProvider = (*HashPack)(nil)
	_ domainService.BladeProvider    = (*Blade)(nil)
)

// HashPack talks to the HashPack extension bridge.
type HashPack struct {
	rpc jsonrpc.Client
}

func NewHashPack(rpc jsonrpc.Client) *HashPack { return &HashPack{rpc: rpc} }

func (h *HashPack) Init(ctx context.Context) error {
	_, err := h.rpc.Call(ctx, methodHashPackInit, []any{})
	return err
}

func (h *HashPack) ConnectToLocalWallet(ctx context.Context) (entity.HederaAccount, error) {
	raw, err := h.rpc.Call(ctx, methodHashPackConnect, []any{})
	if err != nil {
		return entity.HederaAccount{}, err
	}
	return decodeAccount(raw)
}

func (h *HashPack) Disconnect(ctx context.Context) error {
	_, err := h.rpc.Call(ctx, methodHashPackDisconnect, []any{})
	return err
}

// Blade talks to the Blade extension bridge.
type Blade struct {
	rpc jsonrpc.Client
}

func NewBlade(rpc jsonrpc.Client) *Blade { return &Blade{rpc: rpc} }

func (b *Blade) Connect(ctx context.Context) (entity.HederaAccount, error) {
	raw, err := b.rpc.Call(ctx, methodBladeConnect, []any{})
	if err != nil {
		return entity.HederaAccount{}, err
	}
	return decodeAccount(raw)
}

func (b *Blade) Disconnect(ctx context.Context) error {
	_, err := b.rpc.Call(ctx, methodBladeDisconnect, []any{})
	return err
}

func decodeAccount(raw json.RawMessage) (entity.HederaAccount, error) {
	var acc entity.HederaAccount
	if err := json.Unmarshal(raw, &acc); err != nil {
		return entity.HederaAccount{}, fmt.Errorf("%w: decode hedera account: %v", apperrors.ErrExternalServiceFailure, err)
	}
	if err := acc.Validate(); err != nil {
		return entity.HederaAccount{}, fmt.Errorf("%w: %v", apperrors.ErrExternalServiceFailure, err)
	}
	return acc, nil
}
