package chainlist

import (
	"strings"

	dto "yield-wallet/internal/adapter/storage/chainlist/dto"
	"yield-wallet/internal/domain/entity"

	"go.uber.org/zap"
)

var testnetMarkers = []string{"testnet", "sepolia", "goerli", "holesky", "devnet"}

// mapNetworkType uses the explicit classification when present and falls back to the chain name.
func mapNetworkType(raw dto.ChainRaw) entity.NetworkType {
	switch raw.Network {
	case dto.NetworkMainnetRaw:
		return entity.NetworkMainnet
	case dto.NetworkTestnetRaw:
		return entity.NetworkTestnet
	}
	name := strings.ToLower(raw.Name)
	for _, m := range testnetMarkers {
		if strings.Contains(name, m) {
			return entity.NetworkTestnet
		}
	}
	return entity.NetworkMainnet
}

// toNetworkDescriptors maps the requested chains into descriptors a wallet can add.
// Templated RPC URLs (API key placeholders) and ws endpoints are dropped; chains left
// without a usable RPC URL or failing validation are skipped.
func toNetworkDescriptors(rawChains []dto.ChainRaw, wanted map[int64]struct{}, logger *zap.Logger) []entity.NetworkDescriptor {
	out := make([]entity.NetworkDescriptor, 0, len(wanted))
	for _, raw := range rawChains {
		if _, ok := wanted[raw.ChainID]; !ok {
			continue
		}
		if raw.Status == "deprecated" || len(raw.RedFlags) > 0 {
			logger.Warn("Skipping flagged chain", zap.Int64("chainId", raw.ChainID), zap.String("status", raw.Status))
			continue
		}

		rpcs := make([]entity.RPCURL, 0, len(raw.RPC))
		for _, rpcStr := range raw.RPC {
			if strings.Contains(rpcStr, "${") {
				continue
			}
			rpcURL, err := entity.NewRPCURL(rpcStr)
			if err != nil {
				logger.Warn("Skipping invalid RPC URL during mapping",
					zap.String("rawUrl", rpcStr),
					zap.Int64("chainId", raw.ChainID),
					zap.Error(err))
				continue
			}
			if rpcURL.IsWebSocket() {
				continue
			}
			rpcs = append(rpcs, rpcURL)
		}

		explorers := make([]string, 0, len(raw.Explorers))
		for _, e := range raw.Explorers {
			if e.URL != "" {
				explorers = append(explorers, e.URL)
			}
		}

		shortName := raw.ShortName
		if shortName == "" {
			shortName = raw.Name
		}

		desc := entity.NetworkDescriptor{
			ChainID:   raw.ChainID,
			Name:      raw.Name,
			ShortName: shortName,
			NativeCurrency: entity.Currency{
				Name:     raw.Currency.Name,
				Symbol:   raw.Currency.Symbol,
				Decimals: raw.Currency.Decimals,
			},
			RPCURLs:           rpcs,
			BlockExplorerURLs: explorers,
			Network:           mapNetworkType(raw),
		}
		if err := desc.Validate(); err != nil {
			logger.Warn("Skipping chain that does not form a valid descriptor",
				zap.Int64("chainId", raw.ChainID), zap.Error(err))
			continue
		}
		out = append(out, desc)
	}
	return out
}
