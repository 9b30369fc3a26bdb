package repository

import (
	"context"
	"sync/atomic"
	"time"

	"halawa/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverKV serves small keys (selection, preferences) from the primary store
// and switches to the fallback when the primary errors. The primary is retried
// once recoveryInterval has passed.
type FailoverKV struct {
	primary   domain.KVStore
	fallback  domain.KVStore
	clock     domain.Clock
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverKV(primary, fallback domain.KVStore, clock domain.Clock, logger *zerolog.Logger) *FailoverKV {
	return &FailoverKV{
		primary:  primary,
		fallback: fallback,
		clock:    clock,
		logger:   logger,
	}
}

func (r *FailoverKV) markDown(op, key string, err error) {
	r.logger.Error().Err(err).Str("op", op).Str("key", key).Msg("Primary store failed, falling back to session store")
	r.isDown.Store(true)
	r.lastCheck.Store(r.clock.Now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverKV) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(0, r.lastCheck.Load())
	return r.clock.Now().Sub(last) > recoveryInterval
}

func (r *FailoverKV) recovered() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary store recovered")
	}
}

func (r *FailoverKV) Get(ctx context.Context, key string) (string, bool, error) {
	if r.usePrimary() {
		value, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			r.recovered()
			return value, ok, nil
		}
		r.markDown("get", key, err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverKV) Set(ctx context.Context, key, value string) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown("set", key, err)
	}
	return r.fallback.Set(ctx, key, value)
}

func (r *FailoverKV) Delete(ctx context.Context, key string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, key)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown("delete", key, err)
	}
	return r.fallback.Delete(ctx, key)
}
