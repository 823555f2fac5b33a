package http

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"yield-wallet/internal/domain"
	"yield-wallet/internal/pkg/apperrors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any, logger *zap.Logger) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(ctx *fasthttp.RequestCtx, err error, logger *zap.Logger) {
	code := domain.Code(err)
	if errors.Is(err, apperrors.ErrInvalidInput) {
		code = "INVALID_INPUT"
	}
	writeJSON(ctx, statusOf(err, code), errorBody{Error: domain.UserMessage(err), Code: code}, logger)
}

// statusOf prefers the infrastructure sentinels carried by err over the taxonomy code.
func statusOf(err error, code string) int {
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		return fasthttp.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fasthttp.StatusUnauthorized
	default:
		return statusFor(code)
	}
}

// statusFor maps a taxonomy code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "INVALID_INPUT", "UNSUPPORTED_WALLET_KIND":
		return fasthttp.StatusBadRequest
	case "CHAIN_NOT_SUPPORTED", "UNSUPPORTED_OPERATION":
		return fasthttp.StatusUnprocessableEntity
	case "PROVIDER_NOT_INSTALLED":
		return fasthttp.StatusFailedDependency
	case "USER_REJECTED":
		return fasthttp.StatusConflict
	case "NETWORK_SWITCH_FAILED", "PROVIDER_ERROR":
		return fasthttp.StatusBadGateway
	default:
		return fasthttp.StatusInternalServerError
	}
}
