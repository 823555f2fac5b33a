package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"yield-wallet/internal/application/port"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"
)

const (
	eventBuffer       = 16
	keepAliveInterval = 15 * time.Second
)

type SessionHandler struct {
	service port.SessionService
	logger  *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewSessionHandler(svc port.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  logger.Named("SessionHandler"),
		closed:  make(chan struct{}),
	}
}

// Close ends all open event streams.
func (h *SessionHandler) Close() {
	h.closeOnce.Do(func() { close(h.closed) })
}

// GetWallets lists detected wallets. ?refresh=true re-runs detection first.
func (h *SessionHandler) GetWallets(ctx *fasthttp.RequestCtx) {
	var wallets []entity.WalletDescriptor
	if ctx.QueryArgs().GetBool("refresh") {
		wallets = h.service.RefreshWallets()
	} else {
		wallets = h.service.State().AvailableWallets
	}
	writeJSON(ctx, fasthttp.StatusOK, wallets, h.logger)
}

func (h *SessionHandler) GetSession(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, h.service.State(), h.logger)
}

// Connect handles POST /session/connect/{kind}.
func (h *SessionHandler) Connect(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("kind").(string)
	kind, err := entity.ParseWalletKind(raw)
	if err != nil {
		// unknown kinds still go through the session so the failure is published
		kind = entity.WalletKind(raw)
	}

	if err := h.service.ConnectWallet(ctx, kind); err != nil {
		h.logger.Warn("Connect request failed", zap.String("kind", raw), zap.Error(err))
		writeError(ctx, err, h.logger)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, h.service.State(), h.logger)
}

func (h *SessionHandler) Disconnect(ctx *fasthttp.RequestCtx) {
	if err := h.service.DisconnectWallet(ctx); err != nil {
		h.logger.Error("Disconnect request failed", zap.Error(err))
		writeError(ctx, err, h.logger)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, h.service.State(), h.logger)
}

// SwitchChain handles POST /session/chain/{chainId}.
func (h *SessionHandler) SwitchChain(ctx *fasthttp.RequestCtx) {
	chainIDStr, _ := ctx.UserValue("chainId").(string)
	chainID, err := strconv.ParseInt(chainIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("Failed to parse chainId", zap.String("chainIdStr", chainIDStr), zap.Error(err))
		writeError(ctx, fmt.Errorf("%w: invalid chainId %q", apperrors.ErrInvalidInput, chainIDStr), h.logger)
		return
	}

	if err := h.service.SwitchChain(ctx, chainID); err != nil {
		h.logger.Warn("Switch request failed", zap.Int64("chainId", chainID), zap.Error(err))
		writeError(ctx, err, h.logger)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, h.service.State(), h.logger)
}

func (h *SessionHandler) GetBalance(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"balance": h.service.Balance(ctx)}, h.logger)
}

// Events streams every session transition as a server-sent event, starting with the
// current snapshot.
func (h *SessionHandler) Events(ctx *fasthttp.RequestCtx) {
	events := make(chan entity.SessionState, eventBuffer)
	unsubscribe := h.service.Subscribe(func(s entity.SessionState) {
		select {
		case events <- s:
		default:
			h.logger.Warn("Event stream is behind, dropping session update")
		}
	})
	initial := h.service.State()

	ctx.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		if err := writeEvent(w, initial); err != nil {
			return
		}
		h.stream(w, events, keepAliveInterval)
	})
}

func (h *SessionHandler) stream(w *bufio.Writer, events <-chan entity.SessionState, keepAlive time.Duration) {
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-h.closed:
			return
		case s := <-events:
			if err := writeEvent(w, s); err != nil {
				h.logger.Debug("Event stream closed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				h.logger.Debug("Event stream closed", zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, s entity.SessionState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
