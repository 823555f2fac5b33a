package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"
)

type fakeEVM struct {
	mu        sync.Mutex
	results   map[entity.EVMMethod]string
	errs      map[entity.EVMMethod]error
	requests  []entity.EVMMethod
	revoked   bool
	revokeErr error
}

func (f *fakeEVM) Request(_ context.Context, req entity.EVMRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req.Method)
	if err := f.errs[req.Method]; err != nil {
		return nil, err
	}
	if r, ok := f.results[req.Method]; ok {
		return json.RawMessage(r), nil
	}
	return json.RawMessage("null"), nil
}

func (f *fakeEVM) IsMetaMask() bool { return true }

func (f *fakeEVM) Disconnect(context.Context) error {
	f.revoked = true
	return f.revokeErr
}

type fakeHashPack struct {
	account       entity.HederaAccount
	connectErr    error
	disconnectErr error
	inited        bool
	disconnected  bool
}

func (f *fakeHashPack) Init(context.Context) error { f.inited = true; return nil }

func (f *fakeHashPack) ConnectToLocalWallet(context.Context) (entity.HederaAccount, error) {
	return f.account, f.connectErr
}

func (f *fakeHashPack) Disconnect(context.Context) error {
	f.disconnected = true
	return f.disconnectErr
}

type fakeBlade struct {
	account      entity.HederaAccount
	disconnected bool
}

func (f *fakeBlade) Connect(context.Context) (entity.HederaAccount, error) { return f.account, nil }

func (f *fakeBlade) Disconnect(context.Context) error {
	f.disconnected = true
	return errors.New("extension went away")
}

type fakeProbe struct {
	evm       *fakeEVM
	universal *fakeEVM
	hashpack  *fakeHashPack
	blade     *fakeBlade
}

func (p *fakeProbe) Available() bool { return true }

func (p *fakeProbe) EVM() (domainService.EVMProvider, bool) {
	if p.evm == nil {
		return nil, false
	}
	return p.evm, true
}

func (p *fakeProbe) HashPack() (domainService.HashPackProvider, bool) {
	if p.hashpack == nil {
		return nil, false
	}
	return p.hashpack, true
}

func (p *fakeProbe) Blade() (domainService.BladeProvider, bool) {
	if p.blade == nil {
		return nil, false
	}
	return p.blade, true
}

func (p *fakeProbe) Universal() (domainService.UniversalProvider, bool) {
	if p.universal == nil {
		return nil, false
	}
	return p.universal, true
}

type fakeBalances struct {
	balance string
	err     error
}

func (f fakeBalances) AccountBalance(context.Context, string) (string, error) {
	return f.balance, f.err
}
