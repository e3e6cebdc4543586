package tutorRepo

import (
	"context"
	"encoding/json"

	"guruconnect/models"
	"guruconnect/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedTutorRepo serves GetByID from Redis and invalidates on writes.
type CachedTutorRepo struct {
	next   TutorRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewCachedTutorRepo wraps next with a Redis read-through cache.
func NewCachedTutorRepo(next TutorRepository, cache *redis.Client, logger *zap.Logger) TutorRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTutorRepo{next: next, cache: cache, logger: logger}
}

func cacheKey(id string) string {
	return utils.AvailabilityCachePrefix + id
}

func (r *CachedTutorRepo) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	if data, err := r.cache.Get(ctx, cacheKey(id)).Bytes(); err == nil {
		var tutor models.Tutor
		if err := json.Unmarshal(data, &tutor); err == nil {
			return &tutor, nil
		}
	} else if err != redis.Nil {
		r.logger.Warn("tutor cache read failed", zap.String("tutorId", id), zap.Error(err))
	}

	tutor, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(tutor); err == nil {
		if err := r.cache.Set(ctx, cacheKey(id), data, utils.AvailabilityCacheTTL).Err(); err != nil {
			r.logger.Warn("tutor cache write failed", zap.String("tutorId", id), zap.Error(err))
		}
	}
	return tutor, nil
}

func (r *CachedTutorRepo) Create(ctx context.Context, tutor *models.Tutor) error {
	return r.next.Create(ctx, tutor)
}

func (r *CachedTutorRepo) SetAvailability(ctx context.Context, id string, availability []models.AvailabilityEntry) error {
	if err := r.next.SetAvailability(ctx, id, availability); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.Warn("tutor cache invalidation failed", zap.String("tutorId", id), zap.Error(err))
	}
	return nil
}
