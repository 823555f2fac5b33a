package http

import (
	"fmt"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"yield-wallet/internal/application/port"
	"yield-wallet/internal/domain"
	"yield-wallet/internal/pkg/apperrors"
)

type NetworkHandler struct {
	catalog port.NetworkCatalog
	logger  *zap.Logger
}

func NewNetworkHandler(catalog port.NetworkCatalog, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{
		catalog: catalog,
		logger:  logger.Named("NetworkHandler"),
	}
}

// GetNetworks lists every registered network ordered by chain id.
func (h *NetworkHandler) GetNetworks(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, h.catalog.All(), h.logger)
}

// GetNetwork handles GET /networks/{chainId}.
func (h *NetworkHandler) GetNetwork(ctx *fasthttp.RequestCtx) {
	chainIDStr, _ := ctx.UserValue("chainId").(string)
	chainID, err := strconv.ParseInt(chainIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("Failed to parse chainId", zap.String("chainIdStr", chainIDStr), zap.Error(err))
		writeError(ctx, fmt.Errorf("%w: invalid chainId %q", apperrors.ErrInvalidInput, chainIDStr), h.logger)
		return
	}

	desc, ok := h.catalog.Lookup(chainID)
	if !ok {
		writeJSON(ctx, fasthttp.StatusNotFound, errorBody{
			Error: fmt.Sprintf("Unsupported network: %d", chainID),
			Code:  domain.Code(domain.ErrChainNotSupported),
		}, h.logger)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, desc, h.logger)
}
