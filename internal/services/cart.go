package services

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// cartKey is the single shared key for the visitor cart. There is no
// per-user partitioning.
const cartKey = "cart"

// CartStore holds the pending-purchase selection as an ordered list of
// listing IDs under one Redis key.
//
// Operations are read-modify-write without compare-and-swap: two
// simultaneous mutations can race and the last writer wins. Accepted
// limitation for a single-visitor cart.
type CartStore struct {
	cache *RedisCache
}

func NewCartStore(cache *RedisCache) *CartStore {
	return &CartStore{cache: cache}
}

// Get returns the current cart contents. A missing key is an empty cart.
func (s *CartStore) Get(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.cache.Get(ctx, cartKey, &ids)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []uint{}, nil
		}
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// Add appends id to the cart if not already present and returns the
// resulting contents.
func (s *CartStore) Add(ctx context.Context, id uint) ([]uint, error) {
	ids, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range ids {
		if existing == id {
			return ids, nil
		}
	}
	ids = append(ids, id)
	if err := s.cache.Set(ctx, cartKey, ids, 0); err != nil {
		return nil, err
	}
	return ids, nil
}

// Remove drops the first occurrence of id. Removing an absent id is not
// an error.
func (s *CartStore) Remove(ctx context.Context, id uint) ([]uint, error) {
	ids, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i], ids[i+1:]...)
			if err := s.cache.Set(ctx, cartKey, ids, 0); err != nil {
				return nil, err
			}
			break
		}
	}
	return ids, nil
}

// Clear persists an empty cart.
func (s *CartStore) Clear(ctx context.Context) error {
	return s.cache.Set(ctx, cartKey, []uint{}, 0)
}
