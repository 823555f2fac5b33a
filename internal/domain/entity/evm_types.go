package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EVMMethod is an EIP-1193 request method understood by EVM providers.
type EVMMethod string

const (
	MethodRequestAccounts   EVMMethod = "eth_requestAccounts"
	MethodAccounts          EVMMethod = "eth_accounts"
	MethodChainID           EVMMethod = "eth_chainId"
	MethodGetBalance        EVMMethod = "eth_getBalance"
	MethodSwitchChain       EVMMethod = "wallet_switchEthereumChain"
	MethodAddChain          EVMMethod = "wallet_addEthereumChain"
	MethodRevokePermissions EVMMethod = "wallet_revokePermissions"
)

// EIP-1193 and JSON-RPC error codes the adapters react to.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeUnrecognizedChain = 4902
	CodeRequestPending    = -32002
	CodeInternalRPCError  = -32603
)

// EVMRequest is a typed provider request. Build it with the constructors below.
type EVMRequest struct {
	Method EVMMethod
	Params []any
}

func RequestAccounts() EVMRequest { return EVMRequest{Method: MethodRequestAccounts, Params: []any{}} }

func Accounts() EVMRequest { return EVMRequest{Method: MethodAccounts, Params: []any{}} }

func ChainID() EVMRequest { return EVMRequest{Method: MethodChainID, Params: []any{}} }

// GetBalance asks for the latest balance of address.
func GetBalance(address string) EVMRequest {
	return EVMRequest{Method: MethodGetBalance, Params: []any{address, "latest"}}
}

// SwitchChain asks the wallet to make chainID its active chain.
func SwitchChain(chainID int64) EVMRequest {
	return EVMRequest{
		Method: MethodSwitchChain,
		Params: []any{SwitchChainParams{ChainID: hexutil.EncodeUint64(uint64(chainID))}},
	}
}

// AddChain asks the wallet to register a chain.
func AddChain(params AddChainParams) EVMRequest {
	return EVMRequest{Method: MethodAddChain, Params: []any{params}}
}

// RevokePermissions drops the dapp's eth_accounts permission (EIP-2255).
func RevokePermissions() EVMRequest {
	return EVMRequest{
		Method: MethodRevokePermissions,
		Params: []any{map[string]struct{}{"eth_accounts": {}}},
	}
}

// SwitchChainParams is the wallet_switchEthereumChain parameter object.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddChainParams is the EIP-3085 wallet_addEthereumChain parameter object.
type AddChainParams struct {
	ChainID           string               `json:"chainId"`
	ChainName         string               `json:"chainName"`
	NativeCurrency    NativeCurrencyParams `json:"nativeCurrency"`
	RPCURLs           []string             `json:"rpcUrls"`
	BlockExplorerURLs []string             `json:"blockExplorerUrls"`
}

// NativeCurrencyParams is the currency block of AddChainParams.
type NativeCurrencyParams struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ProviderRPCError is an EIP-1193 provider error.
type ProviderRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ProviderRPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func (e *ProviderRPCError) IsUserRejected() bool { return e.Code == CodeUserRejected }

// IsUnrecognizedChain also accepts -32603, which some mobile wallets return for unknown chains.
func (e *ProviderRPCError) IsUnrecognizedChain() bool {
	return e.Code == CodeUnrecognizedChain || e.Code == CodeInternalRPCError
}

func (e *ProviderRPCError) IsUnauthorized() bool { return e.Code == CodeUnauthorized }

func (e *ProviderRPCError) IsUnsupportedMethod() bool { return e.Code == CodeUnsupportedMethod }

func (e *ProviderRPCError) IsRequestPending() bool { return e.Code == CodeRequestPending }

// DecodeAccounts parses an eth_requestAccounts / eth_accounts result. Addresses are
// returned exactly as the provider sent them.
func DecodeAccounts(raw json.RawMessage) ([]string, error) {
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	for _, a := range accounts {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("decode accounts: %q is not an address", a)
		}
	}
	return accounts, nil
}

// DecodeChainID parses an eth_chainId result.
func DecodeChainID(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("decode chain id: %w", err)
	}
	id, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, fmt.Errorf("decode chain id %q: %w", s, err)
	}
	if id == 0 || id > math.MaxInt64 {
		return 0, fmt.Errorf("decode chain id %q: out of range", s)
	}
	return int64(id), nil
}

// DecodeQuantity parses a hex big-integer result such as eth_getBalance.
func DecodeQuantity(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode quantity: %w", err)
	}
	v, err := hexutil.DecodeBig(s)
	if err != nil {
		return nil, fmt.Errorf("decode quantity %q: %w", s, err)
	}
	return v, nil
}
