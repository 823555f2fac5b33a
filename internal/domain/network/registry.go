package network

import (
	"fmt"
	"sort"

	"yield-wallet/internal/domain/entity"
)

const defaultDecimals = 18

// Registry is the immutable set of supported networks keyed by chain id.
type Registry struct {
	byID    map[int64]entity.NetworkDescriptor
	ordered []entity.NetworkDescriptor
}

// NewRegistry validates descs and freezes them. Duplicate chain ids are rejected.
func NewRegistry(descs ...entity.NetworkDescriptor) (*Registry, error) {
	r := &Registry{byID: make(map[int64]entity.NetworkDescriptor, len(descs))}
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[d.ChainID]; dup {
			return nil, fmt.Errorf("duplicate network descriptor for chain %d", d.ChainID)
		}
		d = clone(d)
		r.byID[d.ChainID] = d
		r.ordered = append(r.ordered, d)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ChainID < r.ordered[j].ChainID })
	return r, nil
}

// Lookup returns the descriptor for chainID.
func (r *Registry) Lookup(chainID int64) (entity.NetworkDescriptor, bool) {
	d, ok := r.byID[chainID]
	if !ok {
		return entity.NetworkDescriptor{}, false
	}
	return clone(d), true
}

// All returns every descriptor ordered by chain id.
func (r *Registry) All() []entity.NetworkDescriptor {
	out := make([]entity.NetworkDescriptor, len(r.ordered))
	for i, d := range r.ordered {
		out[i] = clone(d)
	}
	return out
}

// Len is the number of supported networks.
func (r *Registry) Len() int { return len(r.ordered) }

// Name is the display name of chainID: the short name when known,
// "Chain <id>" otherwise and "Unknown Network" without an id.
func (r *Registry) Name(chainID int64) string {
	if chainID <= 0 {
		return "Unknown Network"
	}
	if d, ok := r.byID[chainID]; ok {
		return d.ShortName
	}
	return fmt.Sprintf("Chain %d", chainID)
}

func (r *Registry) IsMainnet(chainID int64) bool {
	d, ok := r.byID[chainID]
	return ok && d.Network == entity.NetworkMainnet
}

func (r *Registry) IsTestnet(chainID int64) bool {
	d, ok := r.byID[chainID]
	return ok && d.Network == entity.NetworkTestnet
}

// NativeDecimals returns the native currency decimals of chainID, 18 when unknown.
func (r *Registry) NativeDecimals(chainID int64) int {
	if d, ok := r.byID[chainID]; ok {
		return d.NativeCurrency.Decimals
	}
	return defaultDecimals
}

// ShortAddress abbreviates an address as 0x1234...abcd.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func clone(d entity.NetworkDescriptor) entity.NetworkDescriptor {
	d.RPCURLs = append([]entity.RPCURL(nil), d.RPCURLs...)
	d.BlockExplorerURLs = append([]string(nil), d.BlockExplorerURLs...)
	return d
}
