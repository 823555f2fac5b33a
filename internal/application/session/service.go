package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"yield-wallet/internal/application/detector"
	"yield-wallet/internal/application/port"
	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	domainRepo "yield-wallet/internal/domain/repository"
	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/metrics"
	"yield-wallet/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Compile-time check
var _ port.SessionService = (*Service)(nil)

// Service owns the single wallet session of the process.
//
// State changes happen under mu and are handed to pubMu before mu is released, so
// subscribers observe transitions in the order they were made. Subscribers run
// synchronously and must not start another transition from inside the callback.
type Service struct {
	factory  domainService.AdapterFactory
	detector *detector.Detector
	kinds    domainRepo.KindRepository
	metrics  metrics.Recorder
	logger   *zap.Logger

	mu      sync.Mutex
	state   entity.SessionState
	adapter domainService.WalletAdapter
	epoch   uint64

	connecting *atomic.Bool
	switching  *atomic.Bool

	pubMu   sync.Mutex
	subMu   sync.Mutex
	subs    map[uint64]func(entity.SessionState)
	nextSub uint64
}

// NewService creates an absent session with the currently detected wallets.
func NewService(
	factory domainService.AdapterFactory,
	det *detector.Detector,
	kinds domainRepo.KindRepository,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *Service {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		factory:  factory,
		detector: det,
		kinds:    kinds,
		metrics:  recorder,
		logger:   logger.Named("SessionService"),
		state: entity.SessionState{
			Status:           entity.StatusAbsent,
			AvailableWallets: det.Detect(),
		},
		connecting: new(atomic.Bool),
		switching:  new(atomic.Bool),
		subs:       make(map[uint64]func(entity.SessionState)),
	}
}

// State returns a snapshot of the session.
func (s *Service) State() entity.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every subsequent transition and returns its cancel func.
func (s *Service) Subscribe(fn func(entity.SessionState)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Restore rebinds the persisted wallet kind without prompting. Failures only clear the key.
func (s *Service) Restore(ctx context.Context) {
	if !s.connecting.CompareAndSwap(false, true) {
		s.logger.Debug("Connect in progress, skipping session restore")
		return
	}
	defer s.connecting.Store(false)

	raw, found, err := s.kinds.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to read persisted wallet kind", zap.Error(err))
		s.clearPersisted(ctx)
		return
	}
	if !found {
		return
	}

	kind, err := entity.ParseWalletKind(raw)
	if err != nil {
		s.logger.Warn("Discarding unknown persisted wallet kind", zap.String("value", raw))
		s.clearPersisted(ctx)
		return
	}

	adapter, err := s.factory.Create(kind)
	if err != nil {
		s.logger.Warn("Cannot build adapter for persisted wallet", zap.String("kind", string(kind)), zap.Error(err))
		s.clearPersisted(ctx)
		return
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	wallet, ok, err := s.restoreWith(ctx, adapter)
	if err == nil && ok {
		err = wallet.Validate()
	}
	if err != nil || !ok {
		s.logger.Info("Previous wallet session not restorable",
			zap.String("kind", string(kind)), zap.Bool("connected", ok), zap.Error(err))
		s.clearPersisted(ctx)
		return
	}

	restored := false
	s.commit(func() bool {
		if s.epoch != epoch || s.state.Status != entity.StatusAbsent {
			return false
		}
		if raw != string(kind) {
			if err := s.kinds.Save(ctx, kind); err != nil {
				s.logger.Warn("Failed to normalize persisted wallet kind", zap.Error(err))
			}
		}
		s.adapter = adapter
		s.state.Status = entity.StatusConnected
		s.state.ConnectedWallet = &wallet
		s.state.Error = ""
		restored = true
		return true
	})
	if restored {
		s.logger.Info("Wallet session restored", zap.String("kind", string(kind)), zap.String("address", wallet.Address))
	}
}

func (s *Service) restoreWith(ctx context.Context, adapter domainService.WalletAdapter) (entity.ConnectedWallet, bool, error) {
	if r, ok := adapter.(domainService.Restorer); ok {
		return r.Restore(ctx)
	}
	if !adapter.IsConnected() {
		return entity.ConnectedWallet{}, false, nil
	}
	w, err := adapter.Connect(ctx)
	return w, err == nil, err
}

// ConnectWallet connects kind. While one connect is in flight, further calls return
// ErrRequestPending and leave the state untouched. An unknown kind only publishes the
// error; the current session and the persisted kind are kept.
func (s *Service) ConnectWallet(ctx context.Context, kind entity.WalletKind) error {
	const op = "connect"
	if !s.connecting.CompareAndSwap(false, true) {
		s.logger.Debug("Connect already in progress", zap.String("kind", string(kind)))
		return domain.NewWalletError(op, kind, nil, "A wallet connection is already in progress",
			domain.ErrRequestPending, apperrors.ErrConflict)
	}
	defer s.connecting.Store(false)

	start := time.Now()
	if !kind.Valid() {
		err := domain.NewWalletError(op, kind, nil,
			fmt.Sprintf("Unsupported wallet type: %s", kind), domain.ErrUnsupportedWalletKind)
		s.observe(op, kind, start, err)
		s.commit(func() bool {
			s.state.Error = domain.UserMessage(err)
			return true
		})
		s.logger.Warn("Rejected connect for unknown wallet kind", zap.String("kind", string(kind)))
		return err
	}

	var epoch uint64
	s.commit(func() bool {
		s.epoch++
		epoch = s.epoch
		s.state.Status = entity.StatusConnecting
		s.state.IsConnecting = true
		s.state.Error = ""
		return true
	})

	adapter, err := s.factory.Create(kind)
	var wallet entity.ConnectedWallet
	if err == nil {
		wallet, err = adapter.Connect(ctx)
	}
	if err == nil {
		if vErr := wallet.Validate(); vErr != nil {
			err = domain.NewWalletError(op, kind, vErr, fmt.Sprintf("%s connection failed: %v", kind.DisplayName(), vErr), domain.ErrProviderError)
		}
	}
	s.observe(op, kind, start, err)

	superseded := false
	s.commit(func() bool {
		if s.epoch != epoch {
			superseded = true
			return false
		}
		if err != nil {
			s.adapter = nil
			s.state.Status = entity.StatusAbsent
			s.state.ConnectedWallet = nil
			s.state.IsConnecting = false
			s.state.Error = domain.UserMessage(err)
			s.clearPersistedLocked(ctx)
			return true
		}
		if saveErr := s.kinds.Save(ctx, kind); saveErr != nil {
			s.logger.Warn("Failed to persist wallet kind", zap.String("kind", string(kind)), zap.Error(saveErr))
		}
		s.adapter = adapter
		s.state.Status = entity.StatusConnected
		s.state.ConnectedWallet = &wallet
		s.state.IsConnecting = false
		s.state.Error = ""
		return true
	})

	if superseded {
		s.logger.Info("Discarding connect result for superseded session", zap.String("kind", string(kind)))
		if adapter != nil && err == nil {
			adapter.Disconnect(ctx)
		}
		return domain.NewWalletError(op, kind, err, "Wallet connection was cancelled",
			domain.ErrSessionSuperseded, apperrors.ErrConflict)
	}
	if err != nil {
		s.logger.Warn("Wallet connect failed", zap.String("kind", string(kind)), zap.Error(err))
		return err
	}
	s.logger.Info("Wallet connected", zap.String("kind", string(kind)), zap.String("address", wallet.Address))
	return nil
}

// DisconnectWallet ends the session. It is a no-op when no session exists and always
// ends absent, whatever the adapter reports.
func (s *Service) DisconnectWallet(ctx context.Context) error {
	var (
		adapter domainService.WalletAdapter
		epoch   uint64
		noop    bool
	)
	s.commit(func() bool {
		if s.adapter == nil && s.state.Status == entity.StatusAbsent {
			noop = true
			return false
		}
		s.epoch++
		epoch = s.epoch
		adapter = s.adapter
		s.adapter = nil
		s.state.Status = entity.StatusDisconnecting
		s.state.IsConnecting = false
		s.state.Error = ""
		return true
	})
	if noop {
		return nil
	}

	if adapter != nil {
		adapter.Disconnect(ctx)
	}

	s.commit(func() bool {
		if s.epoch != epoch {
			return false
		}
		s.clearPersistedLocked(ctx)
		s.state.Status = entity.StatusAbsent
		s.state.ConnectedWallet = nil
		return true
	})
	s.logger.Info("Wallet disconnected")
	return nil
}

// SwitchChain moves the connected wallet to chainID and republishes the connection.
func (s *Service) SwitchChain(ctx context.Context, chainID int64) error {
	const op = "switchChain"

	s.mu.Lock()
	adapter, status, epoch := s.adapter, s.state.Status, s.epoch
	s.mu.Unlock()

	if status != entity.StatusConnected || adapter == nil {
		return domain.NewWalletError(op, "", nil, "Connect a wallet before switching networks", domain.ErrUnsupportedOperation)
	}
	kind := adapter.Kind()

	switcher, ok := adapter.(domainService.ChainSwitcher)
	if !ok {
		err := domain.NewWalletError(op, kind, nil,
			fmt.Sprintf("%s does not support network switching", kind.DisplayName()), domain.ErrUnsupportedOperation)
		s.setError(epoch, adapter, err)
		return err
	}

	if !s.switching.CompareAndSwap(false, true) {
		return domain.NewWalletError(op, kind, nil, "A network switch is already in progress",
			domain.ErrRequestPending, apperrors.ErrConflict)
	}
	defer s.switching.Store(false)

	s.setError(epoch, adapter, nil)

	start := time.Now()
	err := switcher.SwitchChain(ctx, chainID)
	s.observe(op, kind, start, err)
	if err != nil {
		s.logger.Warn("Network switch failed", zap.Int64("chainId", chainID), zap.Error(err))
		s.setError(epoch, adapter, err)
		return err
	}

	wallet, err := adapter.Connect(ctx)
	superseded := false
	s.commit(func() bool {
		if s.epoch != epoch || s.adapter != adapter {
			superseded = true
			return false
		}
		if err != nil {
			s.adapter = nil
			s.state.Status = entity.StatusAbsent
			s.state.ConnectedWallet = nil
			s.state.Error = domain.UserMessage(err)
			s.clearPersistedLocked(ctx)
			return true
		}
		s.state.ConnectedWallet = &wallet
		return true
	})
	if superseded {
		return domain.NewWalletError(op, kind, err, "Network switch finished after the session ended",
			domain.ErrSessionSuperseded, apperrors.ErrConflict)
	}
	if err != nil {
		return err
	}
	s.logger.Info("Network switched", zap.String("kind", string(kind)), zap.Int64("chainId", chainID))
	return nil
}

// RefreshWallets re-runs wallet detection and publishes the result.
func (s *Service) RefreshWallets() []entity.WalletDescriptor {
	wallets := s.detector.Detect()
	s.commit(func() bool {
		s.state.AvailableWallets = wallets
		return true
	})
	return wallets
}

// Balance reads the native balance of the bound account, "0" without a session.
func (s *Service) Balance(ctx context.Context) string {
	s.mu.Lock()
	adapter := s.adapter
	s.mu.Unlock()
	if adapter == nil {
		return "0"
	}
	return adapter.Balance(ctx)
}

// setError publishes err (or clears the message when nil) if the session is still the one
// the caller observed.
func (s *Service) setError(epoch uint64, adapter domainService.WalletAdapter, err error) {
	msg := domain.UserMessage(err)
	s.commit(func() bool {
		if s.epoch != epoch || s.adapter != adapter || s.state.Error == msg {
			return false
		}
		s.state.Error = msg
		return true
	})
}

// commit applies update under mu and publishes the new snapshot when update returns true.
func (s *Service) commit(update func() bool) {
	s.mu.Lock()
	if !update() {
		s.mu.Unlock()
		return
	}
	snapshot := s.state.Clone()
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.subMu.Lock()
	fns := make([]func(entity.SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}

func (s *Service) clearPersisted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPersistedLocked(ctx)
}

func (s *Service) clearPersistedLocked(ctx context.Context) {
	if err := s.kinds.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear persisted wallet kind", zap.Error(err))
	}
}

func (s *Service) observe(op string, kind entity.WalletKind, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(domain.Code(err))
	}
	labels := map[string]string{"wallet": string(kind), "outcome": outcome}
	s.metrics.IncCounter(op, labels)
	s.metrics.ObserveLatency(op, time.Since(start), labels)
}
