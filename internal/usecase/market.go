package usecase

import (
	"context"
	"errors"
	"time"

	"OracleAgent/internal/domain/models"
	domrepo "OracleAgent/internal/domain/repository"
	dsvc "OracleAgent/internal/domain/service"
	"OracleAgent/pkg/cache"
	applogger "OracleAgent/pkg/logger"
)

const snapshotCacheKey = "market:btc:usd"

// MarketUseCase serves snapshots, optionally through a short-lived quote cache.
type MarketUseCase struct {
	fetcher dsvc.MarketFetcher
	cache   cache.Service
	ttl     time.Duration
	metrics domrepo.Metrics
	log     *applogger.Logger
}

// NewMarketUseCase disables caching when c is nil or ttl <= 0, so every call is a fresh fetch.
func NewMarketUseCase(fetcher dsvc.MarketFetcher, c cache.Service, ttl time.Duration, m domrepo.Metrics, l *applogger.Logger) *MarketUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &MarketUseCase{fetcher: fetcher, cache: c, ttl: ttl, metrics: m, log: l}
}

func (uc *MarketUseCase) Snapshot(ctx context.Context) (*models.MarketSnapshot, error) {
	cached := uc.cache != nil && uc.ttl > 0
	if cached {
		var snap models.MarketSnapshot
		err := uc.cache.Get(ctx, snapshotCacheKey, &snap)
		if err == nil {
			return &snap, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.log.Warn("quote cache read failed", applogger.Error(err))
		}
	}

	start := time.Now()
	snap, err := uc.fetcher.Fetch(ctx)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("market_fetch", time.Since(start).Seconds())
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("market_fetch")
		}
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.RecordLastPrice(snap.Price)
	}

	if cached {
		if err := uc.cache.Set(ctx, snapshotCacheKey, snap, uc.ttl); err != nil {
			uc.log.Warn("quote cache write failed", applogger.Error(err))
		}
	}
	return snap, nil
}
