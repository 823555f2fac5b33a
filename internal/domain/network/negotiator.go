package network

import (
	"context"
	"errors"
	"fmt"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Step is one provider request made while negotiating a chain switch.
type Step string

const (
	StepSwitch Step = "switch"
	StepAdd    Step = "add"
)

// SwitchOutcome describes a successful negotiation.
type SwitchOutcome struct {
	ChainID int64
	Steps   []Step
}

// Negotiator moves an EVM wallet to a target chain: switch first, add the chain when the
// wallet does not know it, and stop on the first user rejection.
type Negotiator struct {
	registry *Registry
	logger   *zap.Logger
}

// NewNegotiator creates a negotiator backed by registry.
func NewNegotiator(registry *Registry, logger *zap.Logger) *Negotiator {
	return &Negotiator{registry: registry, logger: logger.Named("SwitchNegotiator")}
}

// Registry exposes the registry the negotiator resolves chains from.
func (n *Negotiator) Registry() *Registry { return n.registry }

// Switch negotiates the active chain of provider. kind only tags returned errors.
func (n *Negotiator) Switch(
	ctx context.Context,
	provider domainService.EVMRequester,
	kind entity.WalletKind,
	chainID int64,
) (SwitchOutcome, error) {
	const op = "switchChain"
	outcome := SwitchOutcome{ChainID: chainID}

	desc, ok := n.registry.Lookup(chainID)
	if !ok {
		n.logger.Warn("Switch requested for unsupported chain", zap.Int64("chainId", chainID))
		return outcome, domain.NewWalletError(op, kind, nil,
			fmt.Sprintf("Unsupported network: %d", chainID), domain.ErrChainNotSupported)
	}

	outcome.Steps = append(outcome.Steps, StepSwitch)
	_, err := provider.Request(ctx, entity.SwitchChain(chainID))
	if err == nil {
		n.logger.Info("Switched chain", zap.Int64("chainId", chainID), zap.String("network", desc.Name))
		return outcome, nil
	}

	var rpcErr *entity.ProviderRPCError
	isRPC := errors.As(err, &rpcErr)
	switch {
	case isRPC && rpcErr.IsUserRejected():
		return outcome, rejected(op, kind, err)
	case isRPC && rpcErr.IsRequestPending():
		return outcome, domain.NewWalletError(op, kind, err,
			"Network switch request is already pending in your wallet",
			domain.ErrNetworkSwitchFailed, domain.ErrRequestPending, apperrors.ErrConflict)
	case isRPC && (rpcErr.IsUnrecognizedChain() || rpcErr.IsUnsupportedMethod()):
		n.logger.Info("Wallet does not know the chain, adding it",
			zap.Int64("chainId", chainID), zap.Int("code", rpcErr.Code))
	default:
		n.logger.Warn("Chain switch failed", zap.Int64("chainId", chainID), zap.Error(err))
		return outcome, domain.NewWalletError(op, kind, err,
			fmt.Sprintf("Failed to switch to %s: %v", desc.Name, err), domain.ErrNetworkSwitchFailed)
	}

	outcome.Steps = append(outcome.Steps, StepAdd)
	_, err = provider.Request(ctx, entity.AddChain(desc.AddChainParams()))
	if err == nil {
		n.logger.Info("Added and switched chain", zap.Int64("chainId", chainID), zap.String("network", desc.Name))
		return outcome, nil
	}
	if errors.As(err, &rpcErr) && rpcErr.IsUserRejected() {
		return outcome, rejected(op, kind, err)
	}

	n.logger.Warn("Adding chain to wallet failed", zap.Int64("chainId", chainID), zap.Error(err))
	return outcome, domain.NewWalletError(op, kind, err,
		fmt.Sprintf("Failed to add %s to wallet: %v", desc.Name, err),
		domain.ErrChainNotSupported, domain.ErrNetworkSwitchFailed)
}

func rejected(op string, kind entity.WalletKind, cause error) error {
	return domain.NewWalletError(op, kind, cause, "Network switch was rejected by user", domain.ErrUserRejected)
}
