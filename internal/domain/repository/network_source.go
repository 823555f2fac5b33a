package repository

import (
	"context"

	"yield-wallet/internal/domain/entity"
)

// NetworkSource supplies network descriptors from an external chain catalog.
type NetworkSource interface {
	// GetNetworks returns descriptors for the requested chain ids that the catalog knows.
	GetNetworks(ctx context.Context, chainIDs []int64) ([]entity.NetworkDescriptor, error)
}
