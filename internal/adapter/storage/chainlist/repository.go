package chainlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	dto "yield-wallet/internal/adapter/storage/chainlist/dto"
	"yield-wallet/internal/config"
	"yield-wallet/internal/domain/entity"
	domainRepo "yield-wallet/internal/domain/repository"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.NetworkSource = (*Repository)(nil)

// Repository implements NetworkSource on top of the chainlist chains.json catalog.
type Repository struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRepository creates a chainlist source for the configured catalog URL.
func NewRepository(cfg config.RegistryConfig, logger *zap.Logger) *Repository {
	return &Repository{
		client:  &fasthttp.Client{},
		url:     cfg.ChainlistURL,
		timeout: cfg.GetTimeout(),
		logger:  logger.Named("ChainlistStorage"),
	}
}

// GetNetworks fetches the catalog and returns descriptors for the requested chain ids.
func (r *Repository) GetNetworks(ctx context.Context, chainIDs []int64) ([]entity.NetworkDescriptor, error) {
	if len(chainIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[int64]struct{}, len(chainIDs))
	for _, id := range chainIDs {
		wanted[id] = struct{}{}
	}

	rawChains, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	descs := toNetworkDescriptors(rawChains, wanted, r.logger)
	r.logger.Info("Mapped chainlist entries to network descriptors",
		zap.Int("requested", len(wanted)), zap.Int("mapped", len(descs)))
	return descs, nil
}

func (r *Repository) fetch(ctx context.Context) ([]dto.ChainRaw, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	deadline, hasDeadline := ctx.Deadline()
	timeout := r.timeout
	if hasDeadline {
		requestTimeout := time.Until(deadline)
		if requestTimeout > 0 && requestTimeout < timeout {
			timeout = requestTimeout
		}
	}

	r.logger.Debug(
		"Fetching chains from Chainlist",
		zap.String("url", r.url),
		zap.Duration("timeout", timeout),
	)

	err := r.client.DoTimeout(req, resp, timeout)
	if err != nil {
		r.logger.Error("Failed to execute request to Chainlist", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to execute request to Chainlist: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		r.logger.Warn(
			"Chainlist source reported not found",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("%w: chainlist source reported not found (%s)", apperrors.ErrNotFound, r.url)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error(
			"Chainlist returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("%w: chainlist returned status %d",
			apperrors.ErrExternalServiceFailure, resp.StatusCode(),
		)
	}

	var body []byte
	contentEncoding := resp.Header.Peek(fasthttp.HeaderContentEncoding)
	if bytes.EqualFold(contentEncoding, []byte("gzip")) {
		r.logger.Debug("Received gzipped response from Chainlist")
		body, err = resp.BodyGunzip()
		if err != nil {
			r.logger.Error("Failed to gunzip Chainlist response body", zap.Error(err))
			return nil, fmt.Errorf("%w: failed to decompress chainlist response: %v",
				apperrors.ErrExternalServiceFailure, err,
			)
		}
	} else {
		body = resp.Body()
	}

	var rawChains []dto.ChainRaw
	err = json.Unmarshal(body, &rawChains)
	if err != nil {
		r.logger.Error("Failed to unmarshal Chainlist response into raw DTOs",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: failed to parse chainlist response into raw DTOs: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	r.logger.Debug("Fetched raw chains from Chainlist", zap.Int("count", len(rawChains)))
	return rawChains, nil
}
