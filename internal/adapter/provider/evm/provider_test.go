package evm

import (
	"context"
	"encoding/json"
	"testing"

	"yield-wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRPC struct {
	method string
	params any
}

func (r *recordingRPC) Call(_ context.Context, method string, params any) (json.RawMessage, error) {
	r.method, r.params = method, params
	return json.RawMessage(`"0x1"`), nil
}

func (r *recordingRPC) Close() error { return nil }

func TestProvider_ForwardsTypedRequest(t *testing.T) {
	rpc := &recordingRPC{}
	p := NewProvider(rpc, "MetaMask")

	raw, err := p.Request(context.Background(), entity.GetBalance("0xabc"))
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1"`, string(raw))
	assert.Equal(t, "eth_getBalance", rpc.method)
	assert.Equal(t, []any{"0xabc", "latest"}, rpc.params)
	assert.True(t, p.IsMetaMask())
	assert.False(t, NewProvider(rpc, "coinbase").IsMetaMask())
}

func TestUniversalProvider_DisconnectRevokes(t *testing.T) {
	rpc := &recordingRPC{}
	p := NewUniversalProvider(rpc, "project")

	require.NoError(t, p.Disconnect(context.Background()))
	assert.Equal(t, "wallet_revokePermissions", rpc.method)
	assert.Equal(t, "project", p.ProjectID())
}
