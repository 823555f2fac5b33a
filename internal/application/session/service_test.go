package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"yield-wallet/internal/adapter/storage/memory"
	"yield-wallet/internal/adapter/wallet"
	"yield-wallet/internal/application/detector"
	"yield-wallet/internal/config"
	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/domain/network"
	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const account = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type emptyProbe struct{}

func (emptyProbe) Available() bool                                    { return true }
func (emptyProbe) EVM() (domainService.EVMProvider, bool)             { return nil, false }
func (emptyProbe) HashPack() (domainService.HashPackProvider, bool)   { return nil, false }
func (emptyProbe) Blade() (domainService.BladeProvider, bool)         { return nil, false }
func (emptyProbe) Universal() (domainService.UniversalProvider, bool) { return nil, false }

type injectedEVM struct{}

func (injectedEVM) Request(context.Context, entity.EVMRequest) (json.RawMessage, error) {
	return json.RawMessage("null"), nil
}
func (injectedEVM) IsMetaMask() bool { return true }

// evmOnlyProbe exposes an injected EVM provider and nothing else.
type evmOnlyProbe struct{ emptyProbe }

func (evmOnlyProbe) EVM() (domainService.EVMProvider, bool) { return injectedEVM{}, true }

type fakeAdapter struct {
	kind       entity.WalletKind
	wallet     entity.ConnectedWallet
	connectErr error
	gate       chan struct{}
	started    chan struct{}

	mu          sync.Mutex
	connected   bool
	disconnects int
}

func (a *fakeAdapter) Kind() entity.WalletKind { return a.kind }

func (a *fakeAdapter) Connect(ctx context.Context) (entity.ConnectedWallet, error) {
	if a.started != nil {
		close(a.started)
		a.started = nil
	}
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return entity.ConnectedWallet{}, ctx.Err()
		}
	}
	if a.connectErr != nil {
		return entity.ConnectedWallet{}, a.connectErr
	}
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return a.wallet, nil
}

func (a *fakeAdapter) Disconnect(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = false
	a.disconnects++
}

func (a *fakeAdapter) Balance(context.Context) string { return "1.5" }

func (a *fakeAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

func (a *fakeAdapter) Address() (string, bool) {
	if !a.IsConnected() {
		return "", false
	}
	return a.wallet.Address, true
}

func (a *fakeAdapter) disconnectCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disconnects
}

type switchingAdapter struct {
	*fakeAdapter
	switchErr error
}

func (a *switchingAdapter) SwitchChain(_ context.Context, chainID int64) error {
	if a.switchErr != nil {
		return a.switchErr
	}
	a.wallet.ChainID = &chainID
	return nil
}

type restoringAdapter struct {
	*fakeAdapter
	authorized bool
}

func (a *restoringAdapter) Restore(context.Context) (entity.ConnectedWallet, bool, error) {
	if !a.authorized {
		return entity.ConnectedWallet{}, false, nil
	}
	return a.wallet, true, nil
}

type fakeFactory map[entity.WalletKind]domainService.WalletAdapter

func (f fakeFactory) Create(kind entity.WalletKind) (domainService.WalletAdapter, error) {
	if a, ok := f[kind]; ok {
		return a, nil
	}
	return nil, domain.NewWalletError("createAdapter", kind, nil, "Unsupported wallet type: "+string(kind), domain.ErrUnsupportedWalletKind)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *countingRecorder) IncCounter(name string, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, name+":"+labels["outcome"])
}

func (r *countingRecorder) ObserveLatency(string, time.Duration, map[string]string) {}

type recorder struct {
	mu     sync.Mutex
	states []entity.SessionState
}

func (r *recorder) record(s entity.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) statuses() []entity.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.SessionStatus, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s.Status)
	}
	return out
}

func newKinds() *memory.KindRepository {
	return memory.NewKindRepository(
		config.StorageConfig{Driver: "memory", Key: "connectedWalletType"},
		config.CacheConfig{CleanupInterval: time.Minute},
		zap.NewNop(),
	)
}

func newService(t *testing.T, factory domainService.AdapterFactory) (*Service, *memory.KindRepository, *recorder) {
	t.Helper()
	kinds := newKinds()
	svc := NewService(factory, detector.New(emptyProbe{}, zap.NewNop()), kinds, nil, zap.NewNop())
	rec := &recorder{}
	t.Cleanup(svc.Subscribe(rec.record))
	return svc, kinds, rec
}

func evmWallet(chainID int64) entity.ConnectedWallet {
	return entity.ConnectedWallet{
		Kind:        entity.WalletEVMInjected,
		ChainFamily: entity.FamilyEVM,
		Address:     account,
		ChainID:     &chainID,
	}
}

func hederaWallet() entity.ConnectedWallet {
	return entity.ConnectedWallet{
		Kind:        entity.WalletHashPack,
		ChainFamily: entity.FamilyHedera,
		Address:     "0x0000000000000000000000000000000000003039",
		AccountID:   "0.0.12345",
	}
}

func persisted(t *testing.T, kinds *memory.KindRepository) (string, bool) {
	t.Helper()
	v, ok, err := kinds.Load(context.Background())
	require.NoError(t, err)
	return v, ok
}

func TestNewService_InitialState(t *testing.T) {
	svc, _, _ := newService(t, fakeFactory{})

	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Nil(t, st.ConnectedWallet)
	assert.False(t, st.IsConnecting)
	assert.Len(t, st.AvailableWallets, len(entity.WalletKinds))
	assert.Equal(t, "0", svc.Balance(context.Background()))
}

func TestConnectWallet_HashPackNotInstalled(t *testing.T) {
	reg, err := network.NewRegistry(network.Builtin()...)
	require.NoError(t, err)
	probe := evmOnlyProbe{}
	factory := wallet.NewFactory(probe, network.NewNegotiator(reg, zap.NewNop()), nil, zap.NewNop())
	kinds := newKinds()
	svc := NewService(factory, detector.New(probe, zap.NewNop()), kinds, nil, zap.NewNop())
	rec := &recorder{}
	defer svc.Subscribe(rec.record)()

	wallets := svc.State().AvailableWallets
	require.Len(t, wallets, len(entity.WalletKinds))
	assert.Equal(t, entity.WalletEVMInjected, wallets[0].Kind)
	assert.True(t, wallets[0].Installed)
	assert.Equal(t, entity.WalletHashPack, wallets[1].Kind)
	assert.False(t, wallets[1].Installed)

	err = svc.ConnectWallet(context.Background(), wallets[1].Kind)

	require.ErrorIs(t, err, domain.ErrProviderNotInstalled)
	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Nil(t, st.ConnectedWallet)
	assert.False(t, st.IsConnecting)
	assert.Equal(t, "HashPack not installed", st.Error)
	_, ok := persisted(t, kinds)
	assert.False(t, ok)
	assert.Equal(t, []entity.SessionStatus{entity.StatusConnecting, entity.StatusAbsent}, rec.statuses())
}

func TestConnectWallet_Success(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(296)}
	metrics := &countingRecorder{}
	kinds := newKinds()
	svc := NewService(fakeFactory{entity.WalletEVMInjected: adapter}, detector.New(emptyProbe{}, zap.NewNop()), kinds, metrics, zap.NewNop())
	rec := &recorder{}
	defer svc.Subscribe(rec.record)()

	require.NoError(t, svc.ConnectWallet(context.Background(), entity.WalletEVMInjected))

	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	require.NotNil(t, st.ConnectedWallet)
	assert.Equal(t, account, st.ConnectedWallet.Address)
	assert.Equal(t, int64(296), *st.ConnectedWallet.ChainID)
	assert.Empty(t, st.Error)

	v, ok := persisted(t, kinds)
	assert.True(t, ok)
	assert.Equal(t, string(entity.WalletEVMInjected), v)

	require.Len(t, rec.states, 2)
	assert.Equal(t, entity.StatusConnecting, rec.states[0].Status)
	assert.True(t, rec.states[0].IsConnecting)
	assert.Equal(t, entity.StatusConnected, rec.states[1].Status)
	assert.False(t, rec.states[1].IsConnecting)

	assert.Equal(t, []string{"connect:success"}, metrics.outcomes)
	assert.Equal(t, "1.5", svc.Balance(context.Background()))
}

func TestConnectWallet_RejectionClearsPersistedKind(t *testing.T) {
	ok := &fakeAdapter{kind: entity.WalletHashPack, wallet: hederaWallet()}
	rejected := &fakeAdapter{
		kind:       entity.WalletBlade,
		connectErr: domain.NewWalletError("connect", entity.WalletBlade, nil, "Blade Wallet connection was rejected by user", domain.ErrUserRejected),
	}
	svc, kinds, _ := newService(t, fakeFactory{entity.WalletHashPack: ok, entity.WalletBlade: rejected})
	ctx := context.Background()

	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletHashPack))
	err := svc.ConnectWallet(ctx, entity.WalletBlade)

	require.ErrorIs(t, err, domain.ErrUserRejected)
	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Nil(t, st.ConnectedWallet)
	assert.Equal(t, "Blade Wallet connection was rejected by user", st.Error)
	_, found := persisted(t, kinds)
	assert.False(t, found)
}

func TestConnectWallet_UnknownKind(t *testing.T) {
	svc, _, rec := newService(t, fakeFactory{})

	err := svc.ConnectWallet(context.Background(), "phantom")

	require.ErrorIs(t, err, domain.ErrUnsupportedWalletKind)
	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Equal(t, "Unsupported wallet type: phantom", st.Error)
	assert.Equal(t, []entity.SessionStatus{entity.StatusAbsent}, rec.statuses())
}

func TestConnectWallet_UnknownKindKeepsLiveSession(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletHashPack, wallet: hederaWallet()}
	svc, kinds, rec := newService(t, fakeFactory{entity.WalletHashPack: adapter})
	ctx := context.Background()
	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletHashPack))

	err := svc.ConnectWallet(ctx, "hashpak")

	require.ErrorIs(t, err, domain.ErrUnsupportedWalletKind)
	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	require.NotNil(t, st.ConnectedWallet)
	assert.Equal(t, "0.0.12345", st.ConnectedWallet.AccountID)
	assert.Equal(t, "Unsupported wallet type: hashpak", st.Error)
	assert.True(t, adapter.IsConnected())
	assert.Zero(t, adapter.disconnectCount())

	v, found := persisted(t, kinds)
	assert.True(t, found)
	assert.Equal(t, string(entity.WalletHashPack), v)
	assert.NotContains(t, rec.statuses()[2:], entity.StatusConnecting)
}

func TestConnectWallet_InvalidWalletIsProviderError(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletHashPack, wallet: entity.ConnectedWallet{Kind: entity.WalletHashPack}}
	svc, _, _ := newService(t, fakeFactory{entity.WalletHashPack: adapter})

	err := svc.ConnectWallet(context.Background(), entity.WalletHashPack)

	require.ErrorIs(t, err, domain.ErrProviderError)
	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
}

func TestConnectWallet_ConcurrentCallIsPending(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	adapter := &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1), gate: gate, started: started}
	svc, _, rec := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- svc.ConnectWallet(ctx, entity.WalletEVMInjected) }()
	<-started

	err := svc.ConnectWallet(ctx, entity.WalletEVMInjected)
	require.ErrorIs(t, err, domain.ErrRequestPending)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	st := svc.State()
	assert.Equal(t, entity.StatusConnecting, st.Status)
	assert.Empty(t, st.Error)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, entity.StatusConnected, svc.State().Status)
	assert.Equal(t, []entity.SessionStatus{entity.StatusConnecting, entity.StatusConnected}, rec.statuses())
}

func TestDisconnectWallet_NoopWhenAbsent(t *testing.T) {
	svc, _, rec := newService(t, fakeFactory{})

	require.NoError(t, svc.DisconnectWallet(context.Background()))

	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
	assert.Empty(t, rec.statuses())
}

func TestDisconnectWallet_ClearsSession(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletHashPack, wallet: hederaWallet()}
	svc, kinds, rec := newService(t, fakeFactory{entity.WalletHashPack: adapter})
	ctx := context.Background()
	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletHashPack))

	require.NoError(t, svc.DisconnectWallet(ctx))

	assert.Equal(t, 1, adapter.disconnectCount())
	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Nil(t, st.ConnectedWallet)
	_, found := persisted(t, kinds)
	assert.False(t, found)
	assert.Equal(t, []entity.SessionStatus{
		entity.StatusConnecting, entity.StatusConnected, entity.StatusDisconnecting, entity.StatusAbsent,
	}, rec.statuses())
	assert.Equal(t, "0", svc.Balance(ctx))
}

func TestDisconnectWallet_DiscardsInFlightConnect(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	adapter := &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1), gate: gate, started: started}
	svc, kinds, _ := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- svc.ConnectWallet(ctx, entity.WalletEVMInjected) }()
	<-started

	require.NoError(t, svc.DisconnectWallet(ctx))
	assert.Equal(t, entity.StatusAbsent, svc.State().Status)

	close(gate)
	err := <-done
	require.ErrorIs(t, err, domain.ErrSessionSuperseded)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	st := svc.State()
	assert.Equal(t, entity.StatusAbsent, st.Status)
	assert.Nil(t, st.ConnectedWallet)
	_, found := persisted(t, kinds)
	assert.False(t, found)
	assert.Equal(t, 1, adapter.disconnectCount())
}

func TestRestore_RebindsAndNormalizesLegacyValue(t *testing.T) {
	adapter := &restoringAdapter{
		fakeAdapter: &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1)},
		authorized:  true,
	}
	svc, kinds, rec := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()
	require.NoError(t, kinds.Save(ctx, "metamask"))

	svc.Restore(ctx)

	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	require.NotNil(t, st.ConnectedWallet)
	assert.Equal(t, account, st.ConnectedWallet.Address)
	v, _ := persisted(t, kinds)
	assert.Equal(t, string(entity.WalletEVMInjected), v)
	assert.Equal(t, []entity.SessionStatus{entity.StatusConnected}, rec.statuses())
}

func TestRestore_ClearsKeyWhenWalletNoLongerConnected(t *testing.T) {
	adapter := &restoringAdapter{fakeAdapter: &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1)}}
	svc, kinds, rec := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()
	require.NoError(t, kinds.Save(ctx, entity.WalletEVMInjected))

	svc.Restore(ctx)

	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
	_, found := persisted(t, kinds)
	assert.False(t, found)
	assert.Empty(t, rec.statuses())
}

func TestRestore_ClearsGarbledValue(t *testing.T) {
	svc, kinds, _ := newService(t, fakeFactory{})
	ctx := context.Background()
	require.NoError(t, kinds.Save(ctx, "not-a-wallet"))

	svc.Restore(ctx)

	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
	_, found := persisted(t, kinds)
	assert.False(t, found)
}

func TestRestore_NonRestorerNotConnected(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletBlade, wallet: hederaWallet()}
	svc, kinds, _ := newService(t, fakeFactory{entity.WalletBlade: adapter})
	ctx := context.Background()
	require.NoError(t, kinds.Save(ctx, entity.WalletBlade))

	svc.Restore(ctx)

	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
	_, found := persisted(t, kinds)
	assert.False(t, found)
}

func TestSwitchChain_WithoutSession(t *testing.T) {
	svc, _, _ := newService(t, fakeFactory{})

	err := svc.SwitchChain(context.Background(), 1)

	require.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Equal(t, entity.StatusAbsent, svc.State().Status)
}

func TestSwitchChain_HederaWalletUnsupported(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletHashPack, wallet: hederaWallet()}
	svc, _, _ := newService(t, fakeFactory{entity.WalletHashPack: adapter})
	ctx := context.Background()
	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletHashPack))

	err := svc.SwitchChain(ctx, 1)

	require.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	assert.Equal(t, "HashPack does not support network switching", st.Error)
}

func TestSwitchChain_UpdatesChainID(t *testing.T) {
	adapter := &switchingAdapter{fakeAdapter: &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1)}}
	svc, _, _ := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()
	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletEVMInjected))

	require.NoError(t, svc.SwitchChain(ctx, 296))

	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	require.NotNil(t, st.ConnectedWallet.ChainID)
	assert.Equal(t, int64(296), *st.ConnectedWallet.ChainID)
}

func TestSwitchChain_FailureKeepsSession(t *testing.T) {
	switchErr := domain.NewWalletError("switchChain", entity.WalletEVMInjected, nil,
		"Network switch was rejected by user", domain.ErrUserRejected)
	adapter := &switchingAdapter{
		fakeAdapter: &fakeAdapter{kind: entity.WalletEVMInjected, wallet: evmWallet(1)},
		switchErr:   switchErr,
	}
	svc, _, _ := newService(t, fakeFactory{entity.WalletEVMInjected: adapter})
	ctx := context.Background()
	require.NoError(t, svc.ConnectWallet(ctx, entity.WalletEVMInjected))

	err := svc.SwitchChain(ctx, 10)

	require.ErrorIs(t, err, domain.ErrUserRejected)
	st := svc.State()
	assert.Equal(t, entity.StatusConnected, st.Status)
	assert.Equal(t, int64(1), *st.ConnectedWallet.ChainID)
	assert.Equal(t, "Network switch was rejected by user", st.Error)
}

func TestRefreshWallets_Publishes(t *testing.T) {
	svc, _, rec := newService(t, fakeFactory{})

	wallets := svc.RefreshWallets()

	assert.Len(t, wallets, len(entity.WalletKinds))
	require.Len(t, rec.states, 1)
	assert.Equal(t, wallets, rec.states[0].AvailableWallets)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	svc, _, _ := newService(t, fakeFactory{})
	var calls int
	cancel := svc.Subscribe(func(entity.SessionState) { calls++ })

	svc.RefreshWallets()
	cancel()
	cancel()
	svc.RefreshWallets()

	assert.Equal(t, 1, calls)
}

func TestSubscribersSeeOrderedTransitions(t *testing.T) {
	adapter := &fakeAdapter{kind: entity.WalletHashPack, wallet: hederaWallet()}
	svc, _, rec := newService(t, fakeFactory{entity.WalletHashPack: adapter})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.ConnectWallet(ctx, entity.WalletHashPack)
			if err != nil && !errors.Is(err, domain.ErrRequestPending) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	statuses := rec.statuses()
	require.NotEmpty(t, statuses)
	for i := 0; i+1 < len(statuses); i += 2 {
		assert.Equal(t, entity.StatusConnecting, statuses[i])
		assert.Equal(t, entity.StatusConnected, statuses[i+1])
	}
	assert.Equal(t, entity.StatusConnected, svc.State().Status)
}
