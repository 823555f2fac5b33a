package evm

import (
	"context"
	"encoding/json"
	"strings"

	"yield-wallet/internal/adapter/provider/jsonrpc"
	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"
)

// Compile-time checks
var (
	_ domainService.EVMProvider       = (*Provider)(nil)
	_ domainService.UniversalProvider = (*UniversalProvider)(nil)
)

// Provider forwards EIP-1193 requests to an injected-provider bridge.
type Provider struct {
	rpc    jsonrpc.Client
	vendor string
}

// NewProvider wraps rpc. vendor is the wallet brand the bridge announces.
func NewProvider(rpc jsonrpc.Client, vendor string) *Provider {
	return &Provider{rpc: rpc, vendor: strings.ToLower(vendor)}
}

func (p *Provider) Request(ctx context.Context, req entity.EVMRequest) (json.RawMessage, error) {
	return p.rpc.Call(ctx, string(req.Method), req.Params)
}

// IsMetaMask mirrors the ethereum.isMetaMask flag of browser providers.
func (p *Provider) IsMetaMask() bool {
	return p.vendor == "metamask"
}

// UniversalProvider is a WalletConnect relay speaking the eip155 namespace.
type UniversalProvider struct {
	rpc       jsonrpc.Client
	projectID string
}

func NewUniversalProvider(rpc jsonrpc.Client, projectID string) *UniversalProvider {
	return &UniversalProvider{rpc: rpc, projectID: projectID}
}

func (p *UniversalProvider) Request(ctx context.Context, req entity.EVMRequest) (json.RawMessage, error) {
	return p.rpc.Call(ctx, string(req.Method), req.Params)
}

// Disconnect revokes the account permission so the relay session ends.
func (p *UniversalProvider) Disconnect(ctx context.Context) error {
	req := entity.RevokePermissions()
	_, err := p.rpc.Call(ctx, string(req.Method), req.Params)
	return err
}

// ProjectID is the WalletConnect cloud project the relay was opened with.
func (p *UniversalProvider) ProjectID() string { return p.projectID }
