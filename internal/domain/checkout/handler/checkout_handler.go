package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"online_shop/internal/domain/checkout/gateway"
	"online_shop/internal/domain/checkout/service"
	"online_shop/internal/pkg/middleware"
	"online_shop/pkg/logger"
	"online_shop/pkg/metrics"
	"online_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service       service.CheckoutService
	webhookSecret string
}

func NewCheckoutHandler(s service.CheckoutService, webhookSecret string) *CheckoutHandler {
	return &CheckoutHandler{
		service:       s,
		webhookSecret: webhookSecret,
	}
}

// Checkout 发起结算
// @Summary 结算当前购物车，303 跳转到托管收银台
// @Tags Checkout
// @Success 303
// @Failure 404 {object} response.Response
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)

	redirectURL, err := h.service.ProcessCheckout(c.Request.Context(), userID)
	if err != nil {
		metrics.GetGlobalCollector().RecordCheckout("failed")
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			response.Error(c, http.StatusNotFound, response.ErrCartNotFound, "No active cart")
		case errors.Is(err, service.ErrEmptyCart):
			response.Error(c, http.StatusBadRequest, response.ErrCartEmpty, "Cart is empty")
		case errors.Is(err, service.ErrSessionCreationFailed):
			response.Error(c, http.StatusBadGateway, response.ErrSessionCreation, "Failed to start payment session")
		case errors.Is(err, service.ErrCheckoutURLUnavailable):
			response.Error(c, http.StatusBadGateway, response.ErrCheckoutURLMissing, "Payment session has no checkout url")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}

	metrics.GetGlobalCollector().RecordCheckout("success")
	c.Redirect(http.StatusSeeOther, redirectURL)
}

// CheckoutReturn 收银台回跳落地
// @Summary 支付完成后从收银台回跳，对账后跳转订单详情
// @Tags Checkout
// @Param session_id query string true "Checkout session ID"
// @Success 303
// @Failure 404 {object} response.Response
// @Router /api/checkout [get]
func (h *CheckoutHandler) CheckoutReturn(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Missing session_id")
		return
	}

	redirect, err := h.service.HandleCheckoutSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found for session")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, redirect)
}

// Webhook 支付网关回调
// @Summary Stripe webhook 入口，验签后分发支付结果
// @Tags Checkout
// @Success 200
// @Failure 400 {object} response.Response
// @Router /api/webhooks/stripe [post]
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrWebhookInvalid, "Failed to read payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.Log.Warn("Webhook signature verification failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, response.ErrWebhookInvalid, "Invalid signature")
		return
	}

	metrics.GetGlobalCollector().RecordWebhookEvent(string(event.Type))

	var stripeSession stripe.CheckoutSession
	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
		if err := json.Unmarshal(event.Data.Raw, &stripeSession); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrWebhookInvalid, "Malformed event payload")
			return
		}
	default:
		// 未订阅处理的事件直接确认，避免网关重试
		c.Status(http.StatusOK)
		return
	}

	sess := gateway.FromStripeSession(&stripeSession)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		// completed 也可能是延迟支付方式下的未支付态，只有 paid 才算成功
		if sess.PaymentStatus == gateway.PaymentStatusPaid {
			err = h.service.HandlePaymentSuccess(c.Request.Context(), sess)
		}
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		err = h.service.HandlePaymentFailure(c.Request.Context(), sess)
	}

	if err != nil {
		if errors.Is(err, service.ErrOrderIDMissing) {
			// metadata 缺失重试也不会恢复，确认掉并留日志排查
			logger.Log.Error("Webhook session has no order id",
				zap.String("event_type", string(event.Type)),
				zap.String("session_id", sess.ID))
			c.Status(http.StatusOK)
			return
		}
		// 非 2xx 让网关按退避策略重试
		logger.Log.Error("Webhook processing failed",
			zap.String("event_type", string(event.Type)),
			zap.String("session_id", sess.ID),
			zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Webhook processing failed")
		return
	}

	c.Status(http.StatusOK)
}
