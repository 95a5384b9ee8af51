package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/driftpix/driftpix-server/internal/config"
	"github.com/driftpix/driftpix-server/internal/kv"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/recency"
	"github.com/driftpix/driftpix-server/internal/store/sqlite"
)

// StoreHandle wraps the image store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational image store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	log.Info("Image database initialized", "path", cfg.Database.Path)
	return &StoreHandle{Store: db}, nil
}

// KVHandle wraps the shared key-value store with shutdown capability.
type KVHandle struct {
	kv.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV provides the shared key-value store backing the recency
// queue and the rate limiter.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.KV.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := kv.OpenRedis(ctx, cfg.KV.RedisAddr, cfg.KV.RedisPassword, cfg.KV.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("KV store connected", "backend", "redis", "addr", cfg.KV.RedisAddr)
		return &KVHandle{Store: store}, nil
	case "badger":
		store, err := kv.OpenBadger(cfg.KV.Path, log)
		if err != nil {
			return nil, err
		}
		log.Info("KV store opened", "backend", "badger", "path", cfg.KV.Path)
		return &KVHandle{Store: store}, nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KV.Backend)
	}
}

// ProvideRecencyQueue provides the per-client recency queue.
func ProvideRecencyQueue(i do.Injector) (*recency.Queue, error) {
	cfg := do.MustInvoke[*config.Config](i)
	kvHandle := do.MustInvoke[*KVHandle](i)

	return recency.New(kvHandle.Store, cfg.Recency.MaxSize), nil
}
