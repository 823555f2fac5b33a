package wallet

import (
	"context"
	"sync"

	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

// hederaAccountState holds the bound Hedera account shared by HashPack and Blade.
type hederaAccountState struct {
	kind     entity.WalletKind
	balances domainService.HederaBalanceSource
	logger   *zap.Logger

	mu      sync.RWMutex
	account entity.HederaAccount
}

func (s *hederaAccountState) Kind() entity.WalletKind { return s.kind }

func (s *hederaAccountState) IsConnected() bool {
	_, ok := s.Address()
	return ok
}

func (s *hederaAccountState) Address() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.EVMAddress, s.account.AccountID != ""
}

// Balance asks the mirror node for the HBAR balance of the bound account.
func (s *hederaAccountState) Balance(ctx context.Context) string {
	s.mu.RLock()
	accountID := s.account.AccountID
	s.mu.RUnlock()
	if accountID == "" || s.balances == nil {
		return "0"
	}
	bal, err := s.balances.AccountBalance(ctx, accountID)
	if err != nil {
		s.logger.Warn("Balance lookup failed", zap.String("accountId", accountID), zap.Error(err))
		return "0"
	}
	return bal
}

func (s *hederaAccountState) bind(acc entity.HederaAccount) entity.ConnectedWallet {
	s.mu.Lock()
	s.account = acc
	s.mu.Unlock()
	s.logger.Info("Wallet connected", zap.String("accountId", acc.AccountID), zap.String("address", acc.EVMAddress))
	return entity.ConnectedWallet{
		Kind:        s.kind,
		ChainFamily: entity.FamilyHedera,
		Address:     acc.EVMAddress,
		AccountID:   acc.AccountID,
	}
}

func (s *hederaAccountState) clear() {
	s.mu.Lock()
	s.account = entity.HederaAccount{}
	s.mu.Unlock()
}
