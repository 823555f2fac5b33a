package environment

import (
	"errors"
	"fmt"

	"yield-wallet/internal/adapter/provider/evm"
	"yield-wallet/internal/adapter/provider/hedera"
	"yield-wallet/internal/adapter/provider/jsonrpc"
	"yield-wallet/internal/config"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.EnvironmentProbe = (*Probe)(nil)

// Probe exposes the wallet bridges named in configuration. A bridge without a URL is absent.
// Construction does not touch the network; WebSocket bridges dial on first use.
type Probe struct {
	evm       *evm.Provider
	universal *evm.UniversalProvider
	hashpack  *hedera.HashPack
	blade     *hedera.Blade
	clients   []jsonrpc.Client
	logger    *zap.Logger
}

// NewProbe builds providers for every configured bridge.
func NewProbe(cfg config.ProvidersConfig, logger *zap.Logger) (*Probe, error) {
	p := &Probe{logger: logger.Named("EnvironmentProbe")}
	timeout := cfg.GetRequestTimeout()

	dial := func(name, raw string) (jsonrpc.Client, error) {
		if raw == "" {
			p.logger.Debug("Wallet bridge not configured", zap.String("wallet", name))
			return nil, nil
		}
		u, err := entity.NewRPCURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%s bridge: %w", name, err)
		}
		c, err := jsonrpc.NewClient(u, timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("%s bridge: %w", name, err)
		}
		p.clients = append(p.clients, c)
		p.logger.Info("Wallet bridge configured", zap.String("wallet", name), zap.String("url", raw))
		return c, nil
	}

	c, err := dial("evm", cfg.EVM.URL)
	if err != nil {
		return nil, err
	}
	if c != nil {
		p.evm = evm.NewProvider(c, cfg.EVM.Vendor)
	}

	if c, err = dial("walletconnect", cfg.WalletConnect.URL); err != nil {
		return nil, err
	}
	if c != nil {
		p.universal = evm.NewUniversalProvider(c, cfg.WalletConnect.ProjectID)
	}

	if c, err = dial("hashpack", cfg.HashPack.URL); err != nil {
		return nil, err
	}
	if c != nil {
		p.hashpack = hedera.NewHashPack(c)
	}

	if c, err = dial("blade", cfg.Blade.URL); err != nil {
		return nil, err
	}
	if c != nil {
		p.blade = hedera.NewBlade(c)
	}

	return p, nil
}

// Available reports whether any wallet bridge is configured.
func (p *Probe) Available() bool {
	return len(p.clients) > 0
}

func (p *Probe) EVM() (domainService.EVMProvider, bool) {
	if p.evm == nil {
		return nil, false
	}
	return p.evm, true
}

func (p *Probe) HashPack() (domainService.HashPackProvider, bool) {
	if p.hashpack == nil {
		return nil, false
	}
	return p.hashpack, true
}

func (p *Probe) Blade() (domainService.BladeProvider, bool) {
	if p.blade == nil {
		return nil, false
	}
	return p.blade, true
}

func (p *Probe) Universal() (domainService.UniversalProvider, bool) {
	if p.universal == nil {
		return nil, false
	}
	return p.universal, true
}

// Close closes every bridge connection.
func (p *Probe) Close() error {
	var errs []error
	for _, c := range p.clients {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
