package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	delivery "yield-wallet/internal/adapter/delivery/http"
	handler "yield-wallet/internal/adapter/handler/http"
)

func runServe(parent context.Context, cfgPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	logger.Info("Initializing dependencies...")
	recorder, metricsHandler := a.instrumentation()
	svc := a.sessionService(recorder)

	sessions := handler.NewSessionHandler(svc, logger)
	networks := handler.NewNetworkHandler(a.registry, logger)

	logger.Info("Setting up HTTP router...")
	r := router.New()
	delivery.RegisterRoutes(r, sessions, networks, metricsHandler, logger)

	server := &fasthttp.Server{
		Handler: delivery.Logging(r.Handler, logger),
		Name:    a.cfg.App.Name,
	}

	serverAddr := ":" + a.cfg.Server.Port
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		svc.Restore(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", serverAddr))
		if err := server.ListenAndServe(serverAddr); err != nil {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		sessions.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
