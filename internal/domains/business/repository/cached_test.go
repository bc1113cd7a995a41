package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/infrastructure/cache"
)

type countingRepo struct {
	businesses map[uuid.UUID]*model.Business
	calls      int
}

func (r *countingRepo) GetBusiness(_ context.Context, id uuid.UUID) (*model.Business, error) {
	r.calls++
	b, ok := r.businesses[id]
	if !ok {
		return nil, model.ErrBusinessNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *countingRepo) GetUpdate(context.Context, uuid.UUID) (*model.Update, error) {
	return nil, model.ErrUpdateNotFound
}

func (r *countingRepo) SetUpdateStatus(context.Context, uuid.UUID, string) error { return nil }

func newCached(t *testing.T) (*CachedRepository, *countingRepo, uuid.UUID) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	id := uuid.New()
	inner := &countingRepo{businesses: map[uuid.UUID]*model.Business{
		id: {
			ID:       id,
			Name:     "Ace Plumbing",
			Category: "plumbing",
			Address:  model.Address{City: "Austin", Region: "TX"},
			Reviews:  &model.ReviewSummary{Count: 12, Average: decimal.RequireFromString("4.75")},
		},
	}}
	return NewCachedRepository(inner, cache.NewRedisCache(client, "test:"), time.Minute), inner, id
}

func TestCachedRepositoryReadsThrough(t *testing.T) {
	repo, inner, id := newCached(t)
	ctx := context.Background()

	first, err := repo.GetBusiness(ctx, id)
	require.NoError(t, err)
	second, err := repo.GetBusiness(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, second.Reviews.Average.Equal(decimal.RequireFromString("4.75")))
}

func TestCachedRepositoryInvalidate(t *testing.T) {
	repo, inner, id := newCached(t)
	ctx := context.Background()

	_, err := repo.GetBusiness(ctx, id)
	require.NoError(t, err)
	require.NoError(t, repo.InvalidateBusiness(ctx, id))
	_, err = repo.GetBusiness(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	require.NoError(t, repo.InvalidateAll(ctx))
	_, err = repo.GetBusiness(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedRepositoryDoesNotCacheMisses(t *testing.T) {
	repo, inner, _ := newCached(t)

	_, err := repo.GetBusiness(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBusinessNotFound)
	_, err = repo.GetBusiness(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBusinessNotFound)
	assert.Equal(t, 2, inner.calls)
}
