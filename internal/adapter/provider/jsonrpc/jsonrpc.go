package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Client performs JSON-RPC 2.0 calls against a wallet bridge endpoint.
type Client interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
	Close() error
}

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// Response defines the basic structure for a JSON-RPC response.
type Response struct {
	ID      uint64                   `json:"id"`
	Jsonrpc string                   `json:"jsonrpc"`
	Result  json.RawMessage          `json:"result,omitempty"`
	Error   *entity.ProviderRPCError `json:"error,omitempty"`
}

// NewClient picks the transport from the endpoint scheme.
func NewClient(endpoint entity.RPCURL, timeout time.Duration, logger *zap.Logger) (Client, error) {
	switch endpoint.Protocol() {
	case entity.ProtocolWS, entity.ProtocolWSS:
		return NewWSClient(endpoint, timeout, logger), nil
	case entity.ProtocolHTTP, entity.ProtocolHTTPS:
		return NewHTTPClient(endpoint, timeout, logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported protocol in URL %s", apperrors.ErrInvalidInput, endpoint)
	}
}

// effectiveTimeout shortens fallback to the context deadline when that comes first.
func effectiveTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	timeout := fallback
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && (timeout <= 0 || remaining < timeout) {
			timeout = remaining
		}
	}
	return timeout
}

// decodeResponse validates a response body. A JSON-RPC error is returned as *entity.ProviderRPCError.
func decodeResponse(endpoint string, body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s returned invalid JSON response: %v",
			apperrors.ErrExternalServiceFailure, endpoint, err,
		)
	}
	if resp.Jsonrpc != "2.0" {
		return nil, fmt.Errorf("%w: %s returned invalid JSON-RPC structure",
			apperrors.ErrExternalServiceFailure, endpoint,
		)
	}
	if resp.Error != nil {
		return &resp, resp.Error
	}
	if resp.Result == nil {
		resp.Result = json.RawMessage("null")
	}
	return &resp, nil
}
