package wallet

import (
	"context"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.WalletAdapter = (*HashPackAdapter)(nil)

// HashPackAdapter connects through the HashPack extension.
type HashPackAdapter struct {
	hederaAccountState
	probe domainService.EnvironmentProbe
}

func newHashPackAdapter(
	probe domainService.EnvironmentProbe,
	balances domainService.HederaBalanceSource,
	logger *zap.Logger,
) *HashPackAdapter {
	return &HashPackAdapter{
		hederaAccountState: hederaAccountState{
			kind:     entity.WalletHashPack,
			balances: balances,
			logger:   logger.Named("HashPackAdapter"),
		},
		probe: probe,
	}
}

// Connect initializes the extension and pairs with the local wallet.
func (a *HashPackAdapter) Connect(ctx context.Context) (entity.ConnectedWallet, error) {
	p, ok := a.probe.HashPack()
	if !ok {
		return entity.ConnectedWallet{}, domain.NotInstalled("connect", a.kind)
	}
	if err := p.Init(ctx); err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}
	acc, err := p.ConnectToLocalWallet(ctx)
	if err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}
	return a.bind(acc), nil
}

func (a *HashPackAdapter) Disconnect(ctx context.Context) {
	if p, ok := a.probe.HashPack(); ok {
		if err := p.Disconnect(ctx); err != nil {
			a.logger.Warn("Provider disconnect failed", zap.Error(err))
		}
	}
	a.clear()
}
