package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"yield-wallet/internal/adapter/environment"
	"yield-wallet/internal/adapter/provider/hedera"
	"yield-wallet/internal/adapter/storage/chainlist"
	"yield-wallet/internal/adapter/storage/file"
	"yield-wallet/internal/adapter/storage/memory"
	"yield-wallet/internal/adapter/wallet"
	"yield-wallet/internal/application/detector"
	"yield-wallet/internal/application/session"
	"yield-wallet/internal/config"
	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/domain/network"
	domainRepo "yield-wallet/internal/domain/repository"
	domainService "yield-wallet/internal/domain/service"
	"yield-wallet/internal/logger"
	"yield-wallet/internal/metrics"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *network.Registry
	probe    *environment.Probe
	detector *detector.Detector
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
	}

	zl, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Printf("Failed to setup logger: %v", err)
		return nil, err
	}
	zl.Info("Logger initialized", zap.Any("config", cfg.Logger))

	registry, err := buildRegistry(ctx, cfg.Registry, zl)
	if err != nil {
		return nil, err
	}

	probe, err := environment.NewProbe(cfg.Providers, zl)
	if err != nil {
		return nil, fmt.Errorf("failed to set up wallet providers: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   zl,
		registry: registry,
		probe:    probe,
		detector: detector.New(probe, zl),
	}, nil
}

func (a *app) close() {
	if err := a.probe.Close(); err != nil {
		a.logger.Warn("Failed to close provider connections", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// buildRegistry starts from the built-in networks and adds configured chainlist imports.
// A failed import is logged and the built-in set is used.
func buildRegistry(ctx context.Context, cfg config.RegistryConfig, zl *zap.Logger) (*network.Registry, error) {
	descs := network.Builtin()
	known := make(map[int64]struct{}, len(descs))
	for _, d := range descs {
		known[d.ChainID] = struct{}{}
	}

	var wanted []int64
	for _, id := range cfg.ImportChainIDs {
		if _, ok := known[id]; !ok {
			wanted = append(wanted, id)
		}
	}

	if len(wanted) > 0 && cfg.ChainlistURL != "" {
		imported, err := chainlist.NewRepository(cfg, zl).GetNetworks(ctx, wanted)
		if err != nil {
			zl.Warn("Chainlist import failed, using built-in networks only", zap.Error(err))
		} else {
			descs = append(descs, imported...)
			zl.Info("Imported networks from chainlist", zap.Int("count", len(imported)))
		}
	}

	registry, err := network.NewRegistry(descs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build network registry: %w", err)
	}
	return registry, nil
}

func (a *app) kindRepository() domainRepo.KindRepository {
	if a.cfg.Storage.Driver == "memory" {
		return memory.NewKindRepository(a.cfg.Storage, a.cfg.Cache, a.logger)
	}
	return file.NewKindRepository(a.cfg.Storage, a.logger)
}

func (a *app) balanceSource() domainService.HederaBalanceSource {
	if a.cfg.Hedera.MirrorURL == "" {
		return nil
	}
	return hedera.NewMirrorClient(a.cfg.Hedera.MirrorURL, a.cfg.Providers.GetRequestTimeout(), a.logger)
}

// instrumentation returns the recorder and, when enabled, the /metrics handler on a private registry.
func (a *app) instrumentation() (metrics.Recorder, fasthttp.RequestHandler) {
	if !a.cfg.Metrics.Enabled {
		return metrics.NoopRecorder{}, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(reg)
	return recorder, fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func (a *app) sessionService(recorder metrics.Recorder) *session.Service {
	negotiator := network.NewNegotiator(a.registry, a.logger)
	factory := wallet.NewFactory(a.probe, negotiator, a.balanceSource(), a.logger)
	return session.NewService(factory, a.detector, a.kindRepository(), recorder, a.logger)
}

var errNoWallets = errors.New("no wallet detected")

func installedCount(ws []entity.WalletDescriptor) int {
	n := 0
	for _, w := range ws {
		if w.Installed {
			n++
		}
	}
	return n
}
