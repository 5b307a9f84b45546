package cart

import (
	"online_shop/internal/domain/cart/handler"
	"online_shop/internal/domain/cart/repository"
	"online_shop/internal/domain/cart/service"
	productRepo "online_shop/internal/domain/product/repository"
	"online_shop/internal/pkg/middleware"
	"online_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CartModule 购物车模块
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	// 依赖商品模块
	return 10
}

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewCartRepository(ctx.DB)
	pRepo := productRepo.NewProductRepository(ctx.DB)
	cService := service.NewCartService(repo, pRepo)
	cHandler := handler.NewCartHandler(cService)

	// 2. 路由注册
	setupRoutes(ctx.Router, cHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CartHandler) {
	g := r.Group("/cart")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.GetCart)
		g.POST("/items", h.AddItem)
		g.PUT("/items/:productId", h.UpdateQuantity)
		g.DELETE("/items/:productId", h.RemoveItem)
	}
}
