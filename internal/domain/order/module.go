package order

import (
	"online_shop/internal/domain/order/handler"
	"online_shop/internal/domain/order/repository"
	"online_shop/internal/domain/order/service"
	"online_shop/internal/pkg/middleware"
	"online_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 15
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewOrderRepository(ctx.DB)
	oService := service.NewOrderService(repo)
	oHandler := handler.NewOrderHandler(oService)

	setupRoutes(ctx.Router, oHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.GetOrders)
		g.GET("/:id", h.GetOrder)
	}
}
