package wallet

import (
	"fmt"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/domain/network"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.AdapterFactory = (*Factory)(nil)

// Factory builds a fresh adapter for each wallet kind.
type Factory struct {
	probe      domainService.EnvironmentProbe
	negotiator *network.Negotiator
	balances   domainService.HederaBalanceSource
	logger     *zap.Logger
}

// NewFactory wires adapters to the environment. balances may be nil, in which case
// Hedera balances read as "0".
func NewFactory(
	probe domainService.EnvironmentProbe,
	negotiator *network.Negotiator,
	balances domainService.HederaBalanceSource,
	logger *zap.Logger,
) *Factory {
	return &Factory{probe: probe, negotiator: negotiator, balances: balances, logger: logger}
}

// Create returns a new adapter for kind.
func (f *Factory) Create(kind entity.WalletKind) (domainService.WalletAdapter, error) {
	switch kind {
	case entity.WalletEVMInjected:
		return newInjectedAdapter(f.probe, f.negotiator, f.logger), nil
	case entity.WalletConnectUniversal:
		return newUniversalAdapter(f.probe, f.negotiator, f.logger), nil
	case entity.WalletHashPack:
		return newHashPackAdapter(f.probe, f.balances, f.logger), nil
	case entity.WalletBlade:
		return newBladeAdapter(f.probe, f.balances, f.logger), nil
	default:
		return nil, domain.NewWalletError("createAdapter", kind, nil,
			fmt.Sprintf("Unsupported wallet type: %s", kind), domain.ErrUnsupportedWalletKind)
	}
}
