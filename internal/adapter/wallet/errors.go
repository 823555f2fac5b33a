package wallet

import (
	"errors"
	"fmt"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"
)

// connectError classifies a provider failure during connect.
func connectError(kind entity.WalletKind, err error) error {
	var rpcErr *entity.ProviderRPCError
	if errors.As(err, &rpcErr) {
		switch {
		case rpcErr.IsUserRejected():
			return domain.NewWalletError("connect", kind, err,
				fmt.Sprintf("%s connection was rejected by user", kind.DisplayName()), domain.ErrUserRejected)
		case rpcErr.IsUnauthorized():
			return domain.NewWalletError("connect", kind, err,
				fmt.Sprintf("%s has not authorized this site", kind.DisplayName()),
				domain.ErrProviderError, apperrors.ErrUnauthorized)
		}
	}
	return domain.NewWalletError("connect", kind, err,
		fmt.Sprintf("%s connection failed: %v", kind.DisplayName(), err), domain.ErrProviderError)
}
