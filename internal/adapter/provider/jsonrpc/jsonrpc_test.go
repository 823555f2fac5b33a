package jsonrpc

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
)

// bridgeReply answers known methods and returns a 4001 rejection for everything else.
func bridgeReply(req Request) Response {
	switch req.Method {
	case "eth_chainId":
		return Response{ID: req.ID, Jsonrpc: "2.0", Result: json.RawMessage(`"0x128"`)}
	case "eth_requestAccounts":
		return Response{ID: req.ID, Jsonrpc: "2.0", Result: json.RawMessage(`["0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"]`)}
	default:
		return Response{ID: req.ID, Jsonrpc: "2.0", Error: &entity.ProviderRPCError{Code: 4001, Message: "User rejected the request."}}
	}
}

func startHTTPBridge(t *testing.T, status int) *HTTPClient {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		if status != fasthttp.StatusOK {
			ctx.SetStatusCode(status)
			return
		}
		var req Request
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(bridgeReply(req))
		ctx.SetContentType("application/json")
		ctx.SetBody(body)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	c := NewHTTPClient("http://bridge.local/rpc", time.Second, zap.NewNop())
	c.client.Dial = func(string) (net.Conn, error) { return ln.Dial() }
	return c
}

func TestHTTPClient_Call(t *testing.T) {
	c := startHTTPBridge(t, fasthttp.StatusOK)

	raw, err := c.Call(context.Background(), "eth_chainId", []any{})
	require.NoError(t, err)
	id, err := entity.DecodeChainID(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(296), id)
}

func TestHTTPClient_ProviderError(t *testing.T) {
	c := startHTTPBridge(t, fasthttp.StatusOK)

	_, err := c.Call(context.Background(), "wallet_switchEthereumChain", []any{})
	var rpcErr *entity.ProviderRPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.True(t, rpcErr.IsUserRejected())
}

func TestHTTPClient_NonOKStatus(t *testing.T) {
	c := startHTTPBridge(t, fasthttp.StatusBadGateway)

	_, err := c.Call(context.Background(), "eth_chainId", []any{})
	require.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)
}

func startWSBridge(t *testing.T) string {
	t.Helper()
	return startWSBridgeWith(t, func(req Request) any { return bridgeReply(req) })
}

func startWSBridgeWith(t *testing.T, reply func(Request) any) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(reply(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSClient_CallAndReuse(t *testing.T) {
	c := NewWSClient(entity.RPCURL(startWSBridge(t)), time.Second, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	raw, err := c.Call(context.Background(), "eth_requestAccounts", []any{})
	require.NoError(t, err)
	accounts, err := entity.DecodeAccounts(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, accounts)

	raw, err = c.Call(context.Background(), "eth_chainId", []any{})
	require.NoError(t, err)
	assert.JSONEq(t, `"0x128"`, string(raw))
}

func TestWSClient_ProviderError(t *testing.T) {
	c := NewWSClient(entity.RPCURL(startWSBridge(t)), time.Second, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Call(context.Background(), "hashpack_connectToLocalWallet", []any{})
	var rpcErr *entity.ProviderRPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, entity.CodeUserRejected, rpcErr.Code)
}

func TestWSClient_MalformedReplyFailsFast(t *testing.T) {
	tests := []struct {
		name  string
		reply func(Request) any
	}{
		{
			name: "wrong version",
			reply: func(req Request) any {
				return map[string]any{"id": req.ID, "jsonrpc": "1.0", "result": "0x1"}
			},
		},
		{
			name: "missing version",
			reply: func(req Request) any {
				return map[string]any{"id": req.ID, "result": "0x1"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWSClient(entity.RPCURL(startWSBridgeWith(t, tt.reply)), 5*time.Second, zap.NewNop())
			t.Cleanup(func() { _ = c.Close() })

			start := time.Now()
			_, err := c.Call(context.Background(), "eth_chainId", []any{})

			require.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)
			assert.NotErrorIs(t, err, apperrors.ErrTimeout)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestWSClient_IgnoresMessagesWithoutID(t *testing.T) {
	c := NewWSClient(entity.RPCURL(startWSBridgeWith(t, func(req Request) any {
		return map[string]any{"jsonrpc": "2.0", "method": "accountsChanged", "params": []string{}}
	})), 300*time.Millisecond, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Call(context.Background(), "eth_chainId", []any{})

	require.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestWSClient_DialFailure(t *testing.T) {
	c := NewWSClient("ws://127.0.0.1:1", time.Second, zap.NewNop())

	_, err := c.Call(context.Background(), "eth_chainId", []any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExternalServiceFailure)
}

func TestNewClient_SelectsTransport(t *testing.T) {
	c, err := NewClient("wss://bridge.local", time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &WSClient{}, c)

	c, err = NewClient("https://bridge.local", time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, c)

	_, err = NewClient("ftp://bridge.local", time.Second, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
