package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/repository"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

// CapacityService reports enrollment pressure per batch. Snapshots are
// served cache-aside over redis so planner polling stays off postgres.
type CapacityService struct {
	batches availabilityBatchReader
	cache   *CacheService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCapacityService constructs a CapacityService. Cache may be nil, in
// which case every snapshot reads through to the repository.
func NewCapacityService(batches availabilityBatchReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CapacityService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{batches: batches, cache: cache, ttl: ttl, logger: logger}
}

// Snapshot returns the capacity snapshot for one batch and reports whether
// the value was served from cache.
func (s *CapacityService) Snapshot(ctx context.Context, batchID string) (*models.CapacitySnapshot, bool, error) {
	if batchID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "batch id is required")
	}

	key := repository.CapacityCacheKey(batchID)
	if s.cache != nil {
		var cached models.CapacitySnapshot
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("capacity cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	snapshot := &models.CapacitySnapshot{
		BatchID:     batch.ID,
		Capacity:    batch.Capacity,
		Unlimited:   batch.Unlimited,
		Enrolled:    batch.Enrolled,
		Utilization: batchUtilization(*batch),
		Full:        batchIsFull(*batch),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snapshot, s.ttl); err != nil {
			s.logger.Warn("capacity cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return snapshot, false, nil
}

// Invalidate drops the cached snapshot after an enrollment or batch change.
func (s *CapacityService) Invalidate(ctx context.Context, batchID string) {
	if s.cache == nil || batchID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, repository.CapacityCacheKey(batchID)); err != nil {
		s.logger.Warn("capacity cache invalidation failed", zap.String("batchId", batchID), zap.Error(err))
	}
}
