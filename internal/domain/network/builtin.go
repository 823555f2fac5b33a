package network

import "yield-wallet/internal/domain/entity"

var ether = entity.Currency{Name: "Ether", Symbol: "ETH", Decimals: 18}

// hbar uses 18 decimals because the Hedera JSON-RPC relay reports balances in weibars.
var hbar = entity.Currency{Name: "HBAR", Symbol: "HBAR", Decimals: 18}

// Builtin returns the networks the application supports out of the box.
func Builtin() []entity.NetworkDescriptor {
	return []entity.NetworkDescriptor{
		{
			ChainID:           1,
			Name:              "Ethereum Mainnet",
			ShortName:         "Ethereum",
			NativeCurrency:    ether,
			RPCURLs:           []entity.RPCURL{"https://mainnet.infura.io/v3/"},
			BlockExplorerURLs: []string{"https://etherscan.io"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           10,
			Name:              "OP Mainnet",
			ShortName:         "Optimism",
			NativeCurrency:    ether,
			RPCURLs:           []entity.RPCURL{"https://mainnet.optimism.io"},
			BlockExplorerURLs: []string{"https://optimistic.etherscan.io"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           137,
			Name:              "Polygon Mainnet",
			ShortName:         "Polygon",
			NativeCurrency:    entity.Currency{Name: "POL", Symbol: "POL", Decimals: 18},
			RPCURLs:           []entity.RPCURL{"https://polygon-rpc.com"},
			BlockExplorerURLs: []string{"https://polygonscan.com"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           295,
			Name:              "Hedera Mainnet",
			ShortName:         "Hedera",
			NativeCurrency:    hbar,
			RPCURLs:           []entity.RPCURL{"https://mainnet.hashio.io/api"},
			BlockExplorerURLs: []string{"https://hashscan.io"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           296,
			Name:              "Hedera Testnet",
			ShortName:         "Hedera Testnet",
			NativeCurrency:    hbar,
			RPCURLs:           []entity.RPCURL{"https://testnet.hashio.io/api"},
			BlockExplorerURLs: []string{"https://hashscan.io/testnet"},
			Network:           entity.NetworkTestnet,
		},
		{
			ChainID:           1101,
			Name:              "Polygon zkEVM",
			ShortName:         "zkEVM",
			NativeCurrency:    ether,
			RPCURLs:           []entity.RPCURL{"https://zkevm-rpc.com"},
			BlockExplorerURLs: []string{"https://zkevm.polygonscan.com"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           42161,
			Name:              "Arbitrum One",
			ShortName:         "Arbitrum",
			NativeCurrency:    ether,
			RPCURLs:           []entity.RPCURL{"https://arb1.arbitrum.io/rpc"},
			BlockExplorerURLs: []string{"https://arbiscan.io"},
			Network:           entity.NetworkMainnet,
		},
		{
			ChainID:           84532,
			Name:              "Base Sepolia",
			ShortName:         "Base Sepolia",
			NativeCurrency:    ether,
			RPCURLs:           []entity.RPCURL{"https://sepolia.base.org"},
			BlockExplorerURLs: []string{"https://sepolia-explorer.base.org"},
			Network:           entity.NetworkTestnet,
		},
		{
			ChainID:           11155111,
			Name:              "Ethereum Sepolia",
			ShortName:         "Sepolia",
			NativeCurrency:    entity.Currency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:           []entity.RPCURL{"https://sepolia.infura.io/v3/"},
			BlockExplorerURLs: []string{"https://sepolia.etherscan.io"},
			Network:           entity.NetworkTestnet,
		},
	}
}
