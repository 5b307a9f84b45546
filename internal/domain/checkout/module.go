package checkout

import (
	cartRepo "online_shop/internal/domain/cart/repository"
	"online_shop/internal/domain/checkout/gateway"
	"online_shop/internal/domain/checkout/handler"
	"online_shop/internal/domain/checkout/service"
	orderRepo "online_shop/internal/domain/order/repository"
	"online_shop/internal/pkg/middleware"
	"online_shop/internal/pkg/registry"
	"online_shop/internal/pkg/urls"
	"online_shop/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// CheckoutModule 结算模块，依赖 cart 和 order 的仓储
type CheckoutModule struct{}

func init() {
	registry.Register(&CheckoutModule{})
}

func (m *CheckoutModule) Name() string {
	return "checkout"
}

func (m *CheckoutModule) Priority() int {
	return 20
}

func (m *CheckoutModule) Init(ctx *registry.ModuleContext) error {
	carts := cartRepo.NewCartRepository(ctx.DB)
	orders := orderRepo.NewOrderRepository(ctx.DB)
	gw := gateway.NewStripeGateway(ctx.Config.Stripe.SecretKey)
	resolver := urls.NewResolver(ctx.Config.App.BaseURL)

	cService := service.NewCheckoutService(
		carts, orders, gw, resolver,
		worker.GlobalPushPool,
		ctx.Config.App.Currency,
	)
	cHandler := handler.NewCheckoutHandler(cService, ctx.Config.Stripe.WebhookSecret)

	setupRoutes(ctx.Router, cHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CheckoutHandler) {
	r.POST("/checkout", middleware.AuthMiddleware(), h.Checkout)

	// 回跳与回调都是网关侧发起，不走登录态
	api := r.Group("/api")
	{
		api.GET("/checkout", h.CheckoutReturn)
		api.POST("/webhooks/stripe", h.Webhook)
	}
}
