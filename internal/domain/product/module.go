package product

import (
	"online_shop/internal/domain/product/handler"
	"online_shop/internal/domain/product/repository"
	"online_shop/internal/domain/product/service"
	"online_shop/internal/pkg/middleware"
	"online_shop/internal/pkg/registry"
	"online_shop/internal/pkg/worker"
	"online_shop/pkg/cache"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	// 商品模块最先初始化，购物车和结算都依赖它
	return 1
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewProductRepository(ctx.DB)
	base := service.NewProductService(repo, worker.GlobalPushPool)

	// 读路径套 Redis 缓存
	cacheService := cache.NewRedisCache(ctx.Redis, "")
	cached := service.NewCachedProductService(base, cacheService)

	h := handler.NewProductHandler(cached)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler) {
	g := r.Group("/products")

	// 公开读接口
	g.GET("", h.GetProducts)
	g.GET("/:id", h.GetProduct)

	// 管理员写接口
	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
	}
}
