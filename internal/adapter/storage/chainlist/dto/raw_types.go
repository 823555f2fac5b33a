package chainlist_dto

// NetworkTypeRaw is the optional network classification chainlist attaches to a chain.
type NetworkTypeRaw string

const (
	NetworkMainnetRaw NetworkTypeRaw = "mainnet"
	NetworkTestnetRaw NetworkTypeRaw = "testnet"
)

// ChainRaw is the subset of a chains.json entry needed to describe a network to a wallet.
type ChainRaw struct {
	Name      string         `json:"name"`
	Chain     string         `json:"chain"`
	RPC       []string       `json:"rpc"`
	Currency  CurrencyRaw    `json:"nativeCurrency"`
	ShortName string         `json:"shortName"`
	ChainID   int64          `json:"chainId"`
	Explorers []ExplorerRaw  `json:"explorers,omitempty"`
	Network   NetworkTypeRaw `json:"network,omitempty"`
	Status    string         `json:"status,omitempty"`
	RedFlags  []string       `json:"redFlags,omitempty"`
}

type CurrencyRaw struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type ExplorerRaw struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Standard string `json:"standard"`
}
