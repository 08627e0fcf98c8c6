package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
)

// UserRepository decorates a persistent user.Repository with a read-through
// cache for lookups by ID. Cache failures are logged and never surface to
// the caller; the store stays the source of truth.
type UserRepository struct {
	store user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository wraps store with c.
func NewUserRepository(store user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		store: store,
		cache: c,
		log:   log,
	}
}

// Create delegates to the store. New records are cached on first read.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.store.Create(ctx, u)
}

// GetByID serves from the cache when possible. Concurrent misses for the
// same ID share a single store lookup.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		// another caller may have filled the cache while we waited
		if u := r.fromCache(ctx, id); u != nil {
			return u, nil
		}

		u, err := r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// callers must not share the singleflight result
	u := *result.(*domain.User)
	return &u, nil
}

// GetByEmail delegates to the store.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.store.GetByEmail(ctx, email)
}

// Update writes through to the store and drops the cached entry.
func (r *UserRepository) Update(ctx context.Context, id int64, upd domain.Update) (*domain.User, error) {
	u, err := r.store.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id, "update")
	return u, nil
}

// Delete removes the record from the store and drops the cached entry.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id, "delete")
	return nil
}

// List delegates to the store. Pages are not cached.
func (r *UserRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.User, error) {
	return r.store.List(ctx, f)
}

func (r *UserRepository) fromCache(ctx context.Context, id int64) *domain.User {
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	if u != nil {
		r.log.Debug("user retrieved from cache", zap.Int64("id", id))
	}
	return u
}

func (r *UserRepository) invalidate(ctx context.Context, id int64, op string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cached user",
			zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	}
}
