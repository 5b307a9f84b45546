package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	cartRepo "online_shop/internal/domain/cart/repository"
	"online_shop/internal/domain/checkout/gateway"
	orderModel "online_shop/internal/domain/order/model"
	orderRepo "online_shop/internal/domain/order/repository"
	"online_shop/internal/pkg/urls"
	"online_shop/internal/pkg/worker"
	"online_shop/pkg/logger"
	"online_shop/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 网关行项目金额在商品单价上加 10% 消费税（四舍五入）
// 订单的 total_amount 保持税前口径
var taxMultiplier = decimal.NewFromFloat(1.10)

type CheckoutService interface {
	// ProcessCheckout 结算当前用户的 active 购物车，返回托管收银台跳转地址
	ProcessCheckout(ctx context.Context, userID uint) (string, error)
	// HandleCheckoutSession 用户从收银台回跳后对账，返回站内跳转路径
	HandleCheckoutSession(ctx context.Context, sessionID string) (string, error)
	HandlePaymentSuccess(ctx context.Context, session *gateway.Session) error
	HandlePaymentFailure(ctx context.Context, session *gateway.Session) error
}

type checkoutService struct {
	carts    cartRepo.CartRepository
	orders   orderRepo.OrderRepository
	gateway  gateway.PaymentGateway
	urls     urls.Resolver
	pushPool *worker.PushWorkerPool // 可为 nil，推送失败不影响结算
	currency string
}

func NewCheckoutService(
	carts cartRepo.CartRepository,
	orders orderRepo.OrderRepository,
	gw gateway.PaymentGateway,
	resolver urls.Resolver,
	pushPool *worker.PushWorkerPool,
	currency string,
) CheckoutService {
	return &checkoutService{
		carts:    carts,
		orders:   orders,
		gateway:  gw,
		urls:     resolver,
		pushPool: pushPool,
		currency: currency,
	}
}

func (s *checkoutService) ProcessCheckout(ctx context.Context, userID uint) (string, error) {
	cart, err := s.carts.FindActiveByUserID(userID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrCartNotFound
		}
		return "", err
	}

	items, err := s.carts.GetItems(cart.ID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	subtotal := decimal.Zero
	orderItems := make([]orderModel.OrderItem, 0, len(items))
	lineItems := make([]gateway.LineItem, 0, len(items))

	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return "", fmt.Errorf("invalid price for product %d: %w", item.ProductID, err)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))

		currency := item.Currency
		if currency == "" {
			currency = s.currency
		}

		orderItems = append(orderItems, orderModel.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Currency:  currency,
		})

		li := gateway.LineItem{
			Name:        item.Name,
			Description: item.Description,
			UnitAmount:  price.Mul(taxMultiplier).Round(0).IntPart(),
			Quantity:    int64(item.Quantity),
			Currency:    currency,
		}
		if img, ok := s.resolveImage(item.ImageURL); ok {
			li.Images = []string{img}
		}
		lineItems = append(lineItems, li)
	}

	order := &orderModel.Order{
		UserID:      userID,
		TotalAmount: subtotal.String(),
		Currency:    s.currency,
		Status:      orderModel.OrderStatusPending,
	}
	if err := s.orders.Create(order); err != nil {
		return "", err
	}
	metrics.GetGlobalCollector().RecordOrderCreated()

	if err := s.orders.CreateItems(order.ID, orderItems); err != nil {
		return "", err
	}

	// 回跳地址里的占位符由网关在跳转时替换成真实会话 ID
	successURL := s.urls.FullURL("/api/checkout") + "?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := s.urls.FullURL("/cart")

	sess, err := s.gateway.CreateSession(ctx, gateway.CreateSessionInput{
		OrderID:    order.ID,
		LineItems:  lineItems,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		logger.Log.Error("Failed to create checkout session",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}
	if sess == nil || sess.ID == "" {
		return "", ErrSessionCreationFailed
	}

	if err := s.orders.Update(order.ID, map[string]interface{}{
		"stripe_session_id": sess.ID,
	}); err != nil {
		return "", err
	}

	// 重新拉取会话取跳转地址，以网关侧为准
	fresh, err := s.gateway.RetrieveSession(ctx, sess.ID)
	if err != nil {
		return "", err
	}
	if fresh == nil || fresh.URL == "" {
		return "", ErrCheckoutURLUnavailable
	}

	logger.Log.Info("Checkout session created",
		zap.Uint("user_id", userID),
		zap.Uint("order_id", order.ID),
		zap.String("session_id", sess.ID))

	return fresh.URL, nil
}

// HandleCheckoutSession 以网关侧会话状态为准对账本地订单
// 未支付的会话不报错，落地页会展示待支付状态
func (s *checkoutService) HandleCheckoutSession(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrOrderNotFound
	}

	order, err := s.orders.GetBySessionID(sessionID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrOrderNotFound
		}
		return "", err
	}

	if sess.PaymentStatus == gateway.PaymentStatusPaid {
		if err := s.HandlePaymentSuccess(ctx, sess); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("/orders/%d", order.ID), nil
}

// HandlePaymentSuccess 幂等：重复投递只会把已是 paid 的订单再写一次 paid
func (s *checkoutService) HandlePaymentSuccess(ctx context.Context, session *gateway.Session) error {
	orderID, err := orderIDFromSession(session)
	if err != nil {
		return err
	}

	patch := map[string]interface{}{
		"status": orderModel.OrderStatusPaid,
	}
	if session.PaymentRef != "" {
		patch["stripe_payment_intent_id"] = session.PaymentRef
	}
	if err := s.orders.Update(orderID, patch); err != nil {
		return err
	}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if isNotFound(err) {
			return ErrOrderNotFound
		}
		return err
	}

	if err := s.carts.Clear(order.UserID); err != nil {
		return err
	}

	s.notify(order.UserID, "支付成功", fmt.Sprintf("您的订单 #%d 已支付成功", order.ID))

	logger.Log.Info("Payment succeeded",
		zap.Uint("order_id", orderID),
		zap.String("session_id", session.ID))

	return nil
}

// HandlePaymentFailure 只标记订单状态，不动购物车
func (s *checkoutService) HandlePaymentFailure(ctx context.Context, session *gateway.Session) error {
	orderID, err := orderIDFromSession(session)
	if err != nil {
		return err
	}

	if err := s.orders.Update(orderID, map[string]interface{}{
		"status": orderModel.OrderStatusFailed,
	}); err != nil {
		return err
	}

	logger.Log.Warn("Payment failed",
		zap.Uint("order_id", orderID),
		zap.String("session_id", session.ID))

	return nil
}

// resolveImage 网关只收绝对地址：相对路径补全 base url，补不出来就不传图
func (s *checkoutService) resolveImage(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if s.urls.IsValidURL(raw) {
		return raw, true
	}
	abs := s.urls.FullURL(raw)
	if s.urls.IsValidURL(abs) {
		return abs, true
	}
	return "", false
}

func (s *checkoutService) notify(userID uint, title, body string) {
	if s.pushPool == nil {
		return
	}
	s.pushPool.AddTask(worker.PushTask{
		AccountID: strconv.FormatUint(uint64(userID), 10),
		Title:     title,
		Body:      body,
	})
}

func orderIDFromSession(session *gateway.Session) (uint, error) {
	if session == nil {
		return 0, ErrOrderIDMissing
	}
	raw, ok := session.Metadata[gateway.MetadataOrderIDKey]
	if !ok || raw == "" {
		return 0, ErrOrderIDMissing
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrOrderIDMissing
	}
	return uint(id), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
