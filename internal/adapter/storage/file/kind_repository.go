package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"yield-wallet/internal/config"
	"yield-wallet/internal/domain/entity"
	domainRepo "yield-wallet/internal/domain/repository"
	"yield-wallet/internal/pkg/apperrors"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Compile-time check
var _ domainRepo.KindRepository = (*KindRepository)(nil)

// KindRepository persists the last connected wallet kind in a YAML key/value document,
// so a restarted process can restore the session.
type KindRepository struct {
	path   string
	key    string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewKindRepository(cfg config.StorageConfig, logger *zap.Logger) *KindRepository {
	return &KindRepository{
		path:   cfg.Path,
		key:    cfg.Key,
		logger: logger.Named("FileKindStorage"),
	}
}

func (r *KindRepository) Load(_ context.Context) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[r.key]
	return v, ok, nil
}

func (r *KindRepository) Save(_ context.Context, kind entity.WalletKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		r.logger.Warn("Replacing unreadable storage file", zap.String("path", r.path), zap.Error(err))
		doc = map[string]string{}
	}
	doc[r.key] = string(kind)
	return r.write(doc)
}

func (r *KindRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		r.logger.Warn("Resetting unreadable storage file", zap.String("path", r.path), zap.Error(err))
		return r.write(map[string]string{})
	}
	if _, ok := doc[r.key]; !ok {
		return nil
	}
	delete(doc, r.key)
	return r.write(doc)
}

func (r *KindRepository) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperrors.ErrInternal, r.path, err)
	}
	doc := map[string]string{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", apperrors.ErrInternal, r.path, err)
	}
	return doc, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (r *KindRepository) write(doc map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode storage: %v", apperrors.ErrInternal, err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", apperrors.ErrInternal, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", apperrors.ErrInternal, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", apperrors.ErrInternal, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", apperrors.ErrInternal, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", apperrors.ErrInternal, r.path, err)
	}
	r.logger.Debug("Storage file written", zap.String("path", r.path), zap.Int("keys", len(doc)))
	return nil
}
