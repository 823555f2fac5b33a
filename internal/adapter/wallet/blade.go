package wallet

import (
	"context"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.WalletAdapter = (*BladeAdapter)(nil)

// BladeAdapter connects through the Blade extension.
type BladeAdapter struct {
	hederaAccountState
	probe domainService.EnvironmentProbe
}

func newBladeAdapter(
	probe domainService.EnvironmentProbe,
	balances domainService.HederaBalanceSource,
	logger *zap.Logger,
) *BladeAdapter {
	return &BladeAdapter{
		hederaAccountState: hederaAccountState{
			kind:     entity.WalletBlade,
			balances: balances,
			logger:   logger.Named("BladeAdapter"),
		},
		probe: probe,
	}
}

func (a *BladeAdapter) Connect(ctx context.Context) (entity.ConnectedWallet, error) {
	p, ok := a.probe.Blade()
	if !ok {
		return entity.ConnectedWallet{}, domain.NotInstalled("connect", a.kind)
	}
	acc, err := p.Connect(ctx)
	if err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}
	return a.bind(acc), nil
}

func (a *BladeAdapter) Disconnect(ctx context.Context) {
	if p, ok := a.probe.Blade(); ok {
		if err := p.Disconnect(ctx); err != nil {
			a.logger.Warn("Provider disconnect failed", zap.Error(err))
		}
	}
	a.clear()
}
