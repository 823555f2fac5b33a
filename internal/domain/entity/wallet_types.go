package entity

import (
	"fmt"
	"strings"
)

// WalletKind identifies a wallet integration. The set is closed.
type WalletKind string

// Known wallet kinds.
const (
	WalletEVMInjected      WalletKind = "evm-injected"
	WalletHashPack         WalletKind = "hedera-hashpack"
	WalletBlade            WalletKind = "hedera-blade"
	WalletConnectUniversal WalletKind = "walletconnect-universal"
)

// WalletKinds lists every kind in catalog order.
var WalletKinds = []WalletKind{WalletEVMInjected, WalletHashPack, WalletBlade, WalletConnectUniversal}

// legacyKinds maps values persisted by earlier front-end builds.
var legacyKinds = map[string]WalletKind{
	"metamask":      WalletEVMInjected,
	"hashpack":      WalletHashPack,
	"blade":         WalletBlade,
	"walletconnect": WalletConnectUniversal,
}

// ParseWalletKind normalizes raw into a known kind.
func ParseWalletKind(raw string) (WalletKind, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, k := range WalletKinds {
		if string(k) == v {
			return k, nil
		}
	}
	if k, ok := legacyKinds[v]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown wallet kind %q", raw)
}

// Valid reports whether k belongs to the closed set.
func (k WalletKind) Valid() bool {
	for _, known := range WalletKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Family returns the chain family the kind connects to.
func (k WalletKind) Family() ChainFamily {
	switch k {
	case WalletHashPack, WalletBlade:
		return FamilyHedera
	default:
		return FamilyEVM
	}
}

// DisplayName is the human-readable wallet name.
func (k WalletKind) DisplayName() string {
	switch k {
	case WalletEVMInjected:
		return "MetaMask"
	case WalletHashPack:
		return "HashPack"
	case WalletBlade:
		return "Blade Wallet"
	case WalletConnectUniversal:
		return "WalletConnect"
	default:
		return string(k)
	}
}

// ChainFamily groups chains by account model.
type ChainFamily string

const (
	FamilyEVM    ChainFamily = "evm"
	FamilyHedera ChainFamily = "hedera"
)

// WalletDescriptor is what the detector reports for each known wallet.
type WalletDescriptor struct {
	Name        string      `json:"name"`
	Kind        WalletKind  `json:"kind"`
	ChainFamily ChainFamily `json:"chainFamily"`
	Icon        string      `json:"icon"`
	Installed   bool        `json:"installed"`
	InstallURL  string      `json:"installUrl"`
}

// ConnectedWallet is the account bound by a successful connect.
// AccountID is set only for the hedera family and ChainID only for evm.
type ConnectedWallet struct {
	Kind        WalletKind  `json:"kind"`
	ChainFamily ChainFamily `json:"chainFamily"`
	Address     string      `json:"address"`
	AccountID   string      `json:"accountId,omitempty"`
	ChainID     *int64      `json:"chainId,omitempty"`
}

// Validate checks the family-dependent field invariant.
func (w ConnectedWallet) Validate() error {
	if w.Address == "" {
		return fmt.Errorf("connected wallet %s has no address", w.Kind)
	}
	if w.ChainFamily != w.Kind.Family() {
		return fmt.Errorf("connected wallet %s reports family %s", w.Kind, w.ChainFamily)
	}
	switch w.ChainFamily {
	case FamilyHedera:
		if w.AccountID == "" || w.ChainID != nil {
			return fmt.Errorf("hedera wallet must carry an account id and no chain id")
		}
	case FamilyEVM:
		if w.ChainID == nil || w.AccountID != "" {
			return fmt.Errorf("evm wallet must carry a chain id and no account id")
		}
	}
	return nil
}

// SessionStatus is the lifecycle phase of the session.
type SessionStatus string

const (
	StatusAbsent        SessionStatus = "absent"
	StatusConnecting    SessionStatus = "connecting"
	StatusConnected     SessionStatus = "connected"
	StatusDisconnecting SessionStatus = "disconnecting"
)

// SessionState is the snapshot published to subscribers.
type SessionState struct {
	Status           SessionStatus      `json:"status"`
	ConnectedWallet  *ConnectedWallet   `json:"connectedWallet"`
	AvailableWallets []WalletDescriptor `json:"availableWallets"`
	IsConnecting     bool               `json:"isConnecting"`
	Error            string             `json:"error,omitempty"`
}

// Clone returns a copy that shares no mutable memory with s.
func (s SessionState) Clone() SessionState {
	out := s
	if s.ConnectedWallet != nil {
		w := *s.ConnectedWallet
		if w.ChainID != nil {
			id := *w.ChainID
			w.ChainID = &id
		}
		out.ConnectedWallet = &w
	}
	if s.AvailableWallets != nil {
		out.AvailableWallets = append([]WalletDescriptor(nil), s.AvailableWallets...)
	}
	return out
}
