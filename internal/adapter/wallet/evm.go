package wallet

import (
	"context"
	"sync"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/domain/network"
	domainService "yield-wallet/internal/domain/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time checks
var (
	_ domainService.WalletAdapter = (*EVMAdapter)(nil)
	_ domainService.ChainSwitcher = (*EVMAdapter)(nil)
	_ domainService.Restorer      = (*EVMAdapter)(nil)
)

// EVMAdapter drives an EIP-1193 provider. It backs both the injected and the
// WalletConnect universal kinds; only the latter revokes permissions on disconnect.
type EVMAdapter struct {
	kind       entity.WalletKind
	provider   func() (domainService.EVMRequester, bool)
	revoke     func(ctx context.Context) error
	negotiator *network.Negotiator
	logger     *zap.Logger

	mu      sync.RWMutex
	address string
	chainID int64
}

func newInjectedAdapter(probe domainService.EnvironmentProbe, n *network.Negotiator, logger *zap.Logger) *EVMAdapter {
	return &EVMAdapter{
		kind: entity.WalletEVMInjected,
		provider: func() (domainService.EVMRequester, bool) {
			p, ok := probe.EVM()
			return p, ok
		},
		negotiator: n,
		logger:     logger.Named("MetaMaskAdapter"),
	}
}

func newUniversalAdapter(probe domainService.EnvironmentProbe, n *network.Negotiator, logger *zap.Logger) *EVMAdapter {
	return &EVMAdapter{
		kind: entity.WalletConnectUniversal,
		provider: func() (domainService.EVMRequester, bool) {
			p, ok := probe.Universal()
			return p, ok
		},
		revoke: func(ctx context.Context) error {
			p, ok := probe.Universal()
			if !ok {
				return nil
			}
			return p.Disconnect(ctx)
		},
		negotiator: n,
		logger:     logger.Named("WalletConnectAdapter"),
	}
}

func (a *EVMAdapter) Kind() entity.WalletKind { return a.kind }

// Connect requests account access and binds the first account and the active chain.
func (a *EVMAdapter) Connect(ctx context.Context) (entity.ConnectedWallet, error) {
	p, ok := a.provider()
	if !ok {
		return entity.ConnectedWallet{}, domain.NotInstalled("connect", a.kind)
	}

	raw, err := p.Request(ctx, entity.RequestAccounts())
	if err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}
	accounts, err := entity.DecodeAccounts(raw)
	if err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}
	if len(accounts) == 0 {
		return entity.ConnectedWallet{}, domain.NewWalletError("connect", a.kind, nil,
			a.kind.DisplayName()+" connection failed: no accounts returned", domain.ErrProviderError)
	}

	chainID, err := a.activeChain(ctx, p)
	if err != nil {
		return entity.ConnectedWallet{}, connectError(a.kind, err)
	}

	a.logger.Info("Wallet connected", zap.String("address", accounts[0]), zap.Int64("chainId", chainID))
	return a.bind(accounts[0], chainID), nil
}

// Restore re-binds an already authorized account through eth_accounts, which never prompts.
func (a *EVMAdapter) Restore(ctx context.Context) (entity.ConnectedWallet, bool, error) {
	p, ok := a.provider()
	if !ok {
		return entity.ConnectedWallet{}, false, nil
	}
	raw, err := p.Request(ctx, entity.Accounts())
	if err != nil {
		return entity.ConnectedWallet{}, false, connectError(a.kind, err)
	}
	accounts, err := entity.DecodeAccounts(raw)
	if err != nil {
		return entity.ConnectedWallet{}, false, connectError(a.kind, err)
	}
	if len(accounts) == 0 {
		return entity.ConnectedWallet{}, false, nil
	}
	chainID, err := a.activeChain(ctx, p)
	if err != nil {
		return entity.ConnectedWallet{}, false, connectError(a.kind, err)
	}
	return a.bind(accounts[0], chainID), true, nil
}

// Disconnect forgets the account. The injected provider keeps its site permission.
func (a *EVMAdapter) Disconnect(ctx context.Context) {
	if a.revoke != nil {
		if err := a.revoke(ctx); err != nil {
			a.logger.Warn("Provider disconnect failed", zap.Error(err))
		}
	}
	a.mu.Lock()
	a.address, a.chainID = "", 0
	a.mu.Unlock()
}

// Balance returns the native balance of the bound account in whole units.
func (a *EVMAdapter) Balance(ctx context.Context) string {
	address, ok := a.Address()
	if !ok {
		return "0"
	}
	p, ok := a.provider()
	if !ok {
		return "0"
	}
	raw, err := p.Request(ctx, entity.GetBalance(address))
	if err != nil {
		a.logger.Warn("Balance lookup failed", zap.String("address", address), zap.Error(err))
		return "0"
	}
	wei, err := entity.DecodeQuantity(raw)
	if err != nil {
		a.logger.Warn("Balance decode failed", zap.Error(err))
		return "0"
	}

	decimals := 18
	if a.negotiator != nil {
		a.mu.RLock()
		decimals = a.negotiator.Registry().NativeDecimals(a.chainID)
		a.mu.RUnlock()
	}
	return decimal.NewFromBigInt(wei, -int32(decimals)).String()
}

func (a *EVMAdapter) IsConnected() bool {
	_, ok := a.Address()
	return ok
}

func (a *EVMAdapter) Address() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.address, a.address != ""
}

// ChainID is the chain the wallet reported last.
func (a *EVMAdapter) ChainID() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.chainID
}

// SwitchChain negotiates chainID with the wallet.
func (a *EVMAdapter) SwitchChain(ctx context.Context, chainID int64) error {
	p, ok := a.provider()
	if !ok {
		return domain.NotInstalled("switchChain", a.kind)
	}
	if a.negotiator == nil {
		return domain.NewWalletError("switchChain", a.kind, nil,
			a.kind.DisplayName()+" cannot switch networks", domain.ErrUnsupportedOperation)
	}
	if _, err := a.negotiator.Switch(ctx, p, a.kind, chainID); err != nil {
		return err
	}
	a.mu.Lock()
	a.chainID = chainID
	a.mu.Unlock()
	return nil
}

func (a *EVMAdapter) activeChain(ctx context.Context, p domainService.EVMRequester) (int64, error) {
	raw, err := p.Request(ctx, entity.ChainID())
	if err != nil {
		return 0, err
	}
	return entity.DecodeChainID(raw)
}

func (a *EVMAdapter) bind(address string, chainID int64) entity.ConnectedWallet {
	a.mu.Lock()
	a.address, a.chainID = address, chainID
	a.mu.Unlock()
	id := chainID
	return entity.ConnectedWallet{
		Kind:        a.kind,
		ChainFamily: entity.FamilyEVM,
		Address:     address,
		ChainID:     &id,
	}
}
