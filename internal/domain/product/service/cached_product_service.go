package service

import (
	"context"
	"fmt"
	"time"

	"online_shop/internal/domain/product/model"
	"online_shop/pkg/cache"
)

// CachedProductService 带缓存的商品服务
// 目录读多写少，读路径套一层 Redis
type CachedProductService struct {
	inner ProductService
	cache cache.CacheService
}

func NewCachedProductService(inner ProductService, cacheService cache.CacheService) ProductService {
	return &CachedProductService{
		inner: inner,
		cache: cacheService,
	}
}

// 缓存键常量
const (
	ProductCacheKeyPrefix     = "product:"
	ProductListCacheKeyPrefix = "product_list:"
	ProductCacheTTL           = time.Hour * 2
	ProductListCacheTTL       = time.Minute * 30
)

func (s *CachedProductService) getProductCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", ProductCacheKeyPrefix, id)
}

func (s *CachedProductService) getProductListCacheKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", ProductListCacheKeyPrefix, page, limit)
}

// invalidateProductCache 清除商品相关缓存
func (s *CachedProductService) invalidateProductCache(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, s.getProductCacheKey(id)); err != nil {
		fmt.Printf("Warning: failed to invalidate product cache: %v\n", err)
	}
	// 清除列表缓存（所有页）
	if err := s.cache.InvalidatePattern(ctx, ProductListCacheKeyPrefix+"*"); err != nil {
		fmt.Printf("Warning: failed to invalidate product list cache: %v\n", err)
	}
}

func (s *CachedProductService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	product, err := s.inner.CreateProduct(input)
	if err != nil {
		return nil, err
	}
	s.invalidateProductCache(context.Background(), product.ID)
	return product, nil
}

func (s *CachedProductService) GetProduct(id uint) (*model.Product, error) {
	ctx := context.Background()
	cacheKey := s.getProductCacheKey(id)

	var product model.Product
	if err := s.cache.Get(ctx, cacheKey, &product); err == nil {
		return &product, nil
	}

	// 缓存未命中，从数据库获取
	result, err := s.inner.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, result, ProductCacheTTL); err != nil {
		// 缓存失败不影响业务逻辑
		fmt.Printf("Warning: failed to cache product: %v\n", err)
	}

	return result, nil
}

func (s *CachedProductService) GetProducts(page, limit int) ([]model.Product, int64, error) {
	ctx := context.Background()
	cacheKey := s.getProductListCacheKey(page, limit)

	var cachedResult struct {
		Products []model.Product `json:"products"`
		Total    int64           `json:"total"`
	}

	if err := s.cache.Get(ctx, cacheKey, &cachedResult); err == nil {
		return cachedResult.Products, cachedResult.Total, nil
	}

	products, total, err := s.inner.GetProducts(page, limit)
	if err != nil {
		return nil, 0, err
	}

	cachedResult.Products = products
	cachedResult.Total = total
	if err := s.cache.Set(ctx, cacheKey, cachedResult, ProductListCacheTTL); err != nil {
		fmt.Printf("Warning: failed to cache product list: %v\n", err)
	}

	return products, total, nil
}

func (s *CachedProductService) UpdateProduct(id uint, input CreateProductInput) (*model.Product, error) {
	product, err := s.inner.UpdateProduct(id, input)
	if err != nil {
		return nil, err
	}
	s.invalidateProductCache(context.Background(), id)
	return product, nil
}

func (s *CachedProductService) DeleteProduct(id uint) error {
	if err := s.inner.DeleteProduct(id); err != nil {
		return err
	}
	s.invalidateProductCache(context.Background(), id)
	return nil
}
