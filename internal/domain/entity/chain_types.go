package entity

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// NetworkType defines the type for network classifications (e.g., mainnet, testnet).
type NetworkType string

// Constants for known network types.
const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// Currency defines the native currency details of a chain.
type Currency struct {
	Name     string `json:"name" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals int    `json:"decimals" validate:"gte=0,lte=36"`
}

// NetworkDescriptor is the static metadata of a supported chain.
type NetworkDescriptor struct {
	ChainID           int64       `json:"chainId" validate:"gt=0"`
	Name              string      `json:"name" validate:"required"`
	ShortName         string      `json:"shortName" validate:"required"`
	NativeCurrency    Currency    `json:"nativeCurrency"`
	RPCURLs           []RPCURL    `json:"rpcUrls" validate:"min=1,dive,url"`
	BlockExplorerURLs []string    `json:"blockExplorerUrls" validate:"dive,url"`
	Network           NetworkType `json:"network" validate:"oneof=mainnet testnet"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator for entity types.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("hedera_account", func(fl validator.FieldLevel) bool {
			_, _, _, err := ParseHederaAccountID(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate checks the descriptor's fields.
func (n NetworkDescriptor) Validate() error {
	if err := Validator().Struct(n); err != nil {
		return fmt.Errorf("network descriptor %d: %w", n.ChainID, err)
	}
	return nil
}

// HexChainID is the 0x-prefixed chain id used on the EVM provider wire.
func (n NetworkDescriptor) HexChainID() string {
	return fmt.Sprintf("0x%x", n.ChainID)
}

// AddChainParams builds the wallet_addEthereumChain payload for the descriptor.
func (n NetworkDescriptor) AddChainParams() AddChainParams {
	rpcs := make([]string, len(n.RPCURLs))
	for i, u := range n.RPCURLs {
		rpcs[i] = u.String()
	}
	explorers := make([]string, len(n.BlockExplorerURLs))
	copy(explorers, n.BlockExplorerURLs)
	return AddChainParams{
		ChainID:   n.HexChainID(),
		ChainName: n.Name,
		NativeCurrency: NativeCurrencyParams{
			Name:     n.NativeCurrency.Name,
			Symbol:   n.NativeCurrency.Symbol,
			Decimals: n.NativeCurrency.Decimals,
		},
		RPCURLs:           rpcs,
		BlockExplorerURLs: explorers,
	}
}
