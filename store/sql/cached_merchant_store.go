package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-acquiring/core"
)

const merchantInfoCacheKeyPrefix = "go-acquiring::merchant_info::v1"

// CachedMerchantInfoStore fronts the merchant-info lookups with a cache. The
// hierarchy and customer classification of a merchant change rarely while the
// lookups run on every FIS charge.
type CachedMerchantInfoStore struct {
	base  core.MerchantInfoStore
	cache repositorycache.CacheService
}

func NewCachedMerchantInfoStore(
	base core.MerchantInfoStore,
	cacheService repositorycache.CacheService,
) (*CachedMerchantInfoStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base merchant info store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: merchant info cache service is required")
	}
	return &CachedMerchantInfoStore{base: base, cache: cacheService}, nil
}

// MerchantInfoCacheKey returns the deterministic cache key contract:
// go-acquiring::merchant_info::v1::<kind>::<merchant_id> with each segment
// URL-path escaped.
func MerchantInfoCacheKey(kind, merchantID string) (string, error) {
	trimmed := strings.TrimSpace(merchantID)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: merchant id is required")
	}
	segments := []string{url.PathEscape(kind), url.PathEscape(trimmed)}
	return strings.Join(append([]string{merchantInfoCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedMerchantInfoStore) Hierarchy(ctx context.Context, merchantID string) (*core.HierarchyInfo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached merchant info store is not configured")
	}
	cacheKey, err := MerchantInfoCacheKey("hierarchy", merchantID)
	if err != nil {
		return nil, err
	}
	info, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.HierarchyInfo, error) {
		fetched, fetchErr := s.base.Hierarchy(ctx, merchantID)
		if fetchErr != nil {
			return core.HierarchyInfo{}, fetchErr
		}
		if fetched == nil {
			return core.HierarchyInfo{}, nil
		}
		return *fetched, nil
	})
	if err != nil {
		return nil, err
	}
	if info.MerchantID == "" {
		return nil, nil
	}
	cloned := info
	return &cloned, nil
}

func (s *CachedMerchantInfoStore) CustomerInfo(ctx context.Context, merchantID string) (*core.CustomerInfo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached merchant info store is not configured")
	}
	cacheKey, err := MerchantInfoCacheKey("customer", merchantID)
	if err != nil {
		return nil, err
	}
	info, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.CustomerInfo, error) {
		fetched, fetchErr := s.base.CustomerInfo(ctx, merchantID)
		if fetchErr != nil {
			return core.CustomerInfo{}, fetchErr
		}
		if fetched == nil {
			return core.CustomerInfo{}, nil
		}
		return *fetched, nil
	})
	if err != nil {
		return nil, err
	}
	if info.MerchantID == "" {
		return nil, nil
	}
	cloned := info
	return &cloned, nil
}

// Invalidate drops both cache entries for a merchant after an upsert.
func (s *CachedMerchantInfoStore) Invalidate(ctx context.Context, merchantID string) error {
	if s == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached merchant info store is not configured")
	}
	for _, kind := range []string{"hierarchy", "customer"} {
		cacheKey, err := MerchantInfoCacheKey(kind, merchantID)
		if err != nil {
			return err
		}
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			return err
		}
	}
	return nil
}

var _ core.MerchantInfoStore = (*CachedMerchantInfoStore)(nil)
