package hedera

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// tinybarDecimals is the number of decimals between tinybars and HBAR.
const tinybarDecimals = 8

// Compile-time check
var _ domainService.HederaBalanceSource = (*MirrorClient)(nil)

type balancesResponse struct {
	Balances []struct {
		Account string `json:"account"`
		Balance int64  `json:"balance"`
	} `json:"balances"`
}

// MirrorClient reads account balances from a Hedera mirror node REST API.
type MirrorClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

func NewMirrorClient(baseURL string, timeout time.Duration, logger *zap.Logger) *MirrorClient {
	return &MirrorClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("HederaMirror"),
	}
}

// AccountBalance returns the HBAR balance of accountID as a decimal string.
func (m *MirrorClient) AccountBalance(ctx context.Context, accountID string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(m.baseURL + "/api/v1/balances?account.id=" + url.QueryEscape(accountID))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	if err := m.client.DoTimeout(req, resp, timeout); err != nil {
		return "", fmt.Errorf("%w: mirror node request failed: %v", apperrors.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("%w: mirror node returned status %d", apperrors.ErrExternalServiceFailure, resp.StatusCode())
	}

	var body balancesResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: decode mirror balances: %v", apperrors.ErrExternalServiceFailure, err)
	}
	for _, b := range body.Balances {
		if b.Account == accountID {
			m.logger.Debug("Mirror balance", zap.String("accountId", accountID), zap.Int64("tinybars", b.Balance))
			return decimal.New(b.Balance, -tinybarDecimals).String(), nil
		}
	}
	return "", fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
}
