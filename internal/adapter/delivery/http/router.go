package http

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	handler "yield-wallet/internal/adapter/handler/http"
)

// RegisterRoutes sets up the session and network routes plus common health checks.
// metrics may be nil when the endpoint is disabled.
func RegisterRoutes(
	r *router.Router,
	sessions *handler.SessionHandler,
	networks *handler.NetworkHandler,
	metrics fasthttp.RequestHandler,
	logger *zap.Logger,
) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/wallets", sessions.GetWallets)
	r.GET("/session", sessions.GetSession)
	r.GET("/session/events", sessions.Events)
	r.GET("/session/balance", sessions.GetBalance)
	r.POST("/session/connect/{kind}", sessions.Connect)
	r.POST("/session/disconnect", sessions.Disconnect)
	r.POST("/session/chain/{chainId:[0-9]+}", sessions.SwitchChain)

	r.GET("/networks", networks.GetNetworks)
	r.GET("/networks/{chainId:[0-9]+}", networks.GetNetwork)

	logger.Info("Setting up health check route...")
	r.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("OK")
	})

	if metrics != nil {
		r.GET("/metrics", metrics)
	}

	logger.Info("All routes registered.")
}
