package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/pkg/cache"
	"pagesmith-backend/pkg/logger"
)

const businessKeyPrefix = "business:"

// CachedRepository reads businesses through the cache. Updates are
// always read from the store.
type CachedRepository struct {
	next  RepositoryInterface
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRepository wraps next with a read-through business cache.
func NewCachedRepository(next RepositoryInterface, c cache.Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, cache: c, ttl: ttl}
}

func businessKey(id uuid.UUID) string {
	return businessKeyPrefix + id.String()
}

func (r *CachedRepository) GetBusiness(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	var b model.Business
	found, err := r.cache.Get(ctx, businessKey(id), &b)
	if err != nil {
		logger.Warn("business cache read failed", map[string]interface{}{"business_id": id.String(), "error": err.Error()})
	} else if found {
		return &b, nil
	}

	fresh, err := r.next.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, businessKey(id), fresh, r.ttl); err != nil {
		logger.Warn("business cache write failed", map[string]interface{}{"business_id": id.String(), "error": err.Error()})
	}
	return fresh, nil
}

func (r *CachedRepository) GetUpdate(ctx context.Context, id uuid.UUID) (*model.Update, error) {
	return r.next.GetUpdate(ctx, id)
}

func (r *CachedRepository) SetUpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.next.SetUpdateStatus(ctx, id, status)
}

// InvalidateBusiness drops one cached business record.
func (r *CachedRepository) InvalidateBusiness(ctx context.Context, id uuid.UUID) error {
	return r.cache.Delete(ctx, businessKey(id))
}

// InvalidateAll drops every cached business record.
func (r *CachedRepository) InvalidateAll(ctx context.Context) error {
	return r.cache.DeletePattern(ctx, businessKeyPrefix+"*")
}
