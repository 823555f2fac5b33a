package memory

import (
	"context"
	"fmt"

	"yield-wallet/internal/config"
	"yield-wallet/internal/domain/entity"
	domainRepo "yield-wallet/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.KindRepository = (*KindRepository)(nil)

// KindRepository keeps the last connected wallet kind in process memory.
// It lives as long as the process, like a session-scoped browser store.
type KindRepository struct {
	cache  *cache.Cache
	key    string
	logger *zap.Logger
}

// NewKindRepository creates a go-cache backed repository.
func NewKindRepository(storage config.StorageConfig, cacheCfg config.CacheConfig, logger *zap.Logger) *KindRepository {
	defaultExpiration := cacheCfg.GetDefaultExpiration()
	if defaultExpiration <= 0 {
		defaultExpiration = cache.NoExpiration
	}
	cleanupInterval := cacheCfg.GetCleanupInterval()

	c := cache.New(defaultExpiration, cleanupInterval)
	logger.Info(
		"Initialized go-cache for wallet kind storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	return &KindRepository{
		cache:  c,
		key:    storage.Key,
		logger: logger.Named("MemoryKindStorage"),
	}
}

func (r *KindRepository) Load(_ context.Context) (string, bool, error) {
	if x, found := r.cache.Get(r.key); found {
		if v, ok := x.(string); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", r.key))
			return v, true, nil
		}
		r.logger.Warn(
			"Memory cache data type mismatch for key",
			zap.String("key", r.key), zap.String("type", fmt.Sprintf("%T", x)),
		)
		return "", false, nil
	}
	r.logger.Debug("Memory cache miss", zap.String("key", r.key))
	return "", false, nil
}

func (r *KindRepository) Save(_ context.Context, kind entity.WalletKind) error {
	r.cache.Set(r.key, string(kind), cache.DefaultExpiration)
	r.logger.Debug("Memory cache set", zap.String("key", r.key), zap.String("kind", string(kind)))
	return nil
}

func (r *KindRepository) Clear(_ context.Context) error {
	r.cache.Delete(r.key)
	return nil
}
