package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ Client = (*HTTPClient)(nil)

// HTTPClient sends one JSON-RPC request per HTTP POST.
type HTTPClient struct {
	client   *fasthttp.Client
	endpoint string
	timeout  time.Duration
	nextID   atomic.Uint64
	logger   *zap.Logger
}

// NewHTTPClient creates a client for an http(s) bridge endpoint.
func NewHTTPClient(endpoint entity.RPCURL, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		client:   &fasthttp.Client{},
		endpoint: endpoint.String(),
		timeout:  timeout,
		logger:   logger.Named("JSONRPCHTTP"),
	}
}

// Call posts method with params and returns the raw result.
func (c *HTTPClient) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(Request{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s request: %v", apperrors.ErrInvalidInput, method, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	timeout := effectiveTimeout(ctx, c.timeout)
	c.logger.Debug("Sending JSON-RPC request",
		zap.String("url", c.endpoint), zap.String("method", method), zap.Duration("timeout", timeout))

	var requestErr error
	if timeout <= 0 {
		requestErr = c.client.Do(req, resp)
	} else {
		requestErr = c.client.DoTimeout(req, resp, timeout)
	}
	if requestErr != nil {
		if errors.Is(requestErr, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s to %s timed out after %v: %v",
				apperrors.ErrTimeout, method, c.endpoint, timeout, requestErr,
			)
		}
		return nil, fmt.Errorf("%w: %s to %s failed: %v",
			apperrors.ErrExternalServiceFailure, method, c.endpoint, requestErr,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Debug("Bridge returned non-OK status",
			zap.String("url", c.endpoint), zap.Int("statusCode", resp.StatusCode()))
		return nil, fmt.Errorf("%w: %s returned non-OK http status: %d",
			apperrors.ErrExternalServiceFailure, c.endpoint, resp.StatusCode(),
		)
	}

	decoded, err := decodeResponse(c.endpoint, resp.Body())
	if err != nil {
		c.logger.Debug("JSON-RPC call failed", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	return decoded.Result, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
