package service

import (
	"context"
	"errors"
	"os"
	"testing"

	cartModel "online_shop/internal/domain/cart/model"
	"online_shop/internal/domain/checkout/gateway"
	orderModel "online_shop/internal/domain/order/model"
	"online_shop/internal/pkg/urls"
	"online_shop/pkg/logger"
	baseModel "online_shop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// MockCartRepository 购物车仓储 Mock
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindActiveByUserID(userID uint) (*cartModel.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.Cart), args.Error(1)
}

func (m *MockCartRepository) FindOrCreateActive(userID uint) (*cartModel.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.Cart), args.Error(1)
}

func (m *MockCartRepository) GetItems(cartID uint) ([]cartModel.CartItemDetail, error) {
	args := m.Called(cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cartModel.CartItemDetail), args.Error(1)
}

func (m *MockCartRepository) AddItem(cartID, productID uint, quantity int) error {
	args := m.Called(cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateItemQuantity(cartID, productID uint, quantity int) error {
	args := m.Called(cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveItem(cartID, productID uint) error {
	args := m.Called(cartID, productID)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockOrderRepository 订单仓储 Mock
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *orderModel.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItems(orderID uint, items []orderModel.OrderItem) error {
	args := m.Called(orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(id uint, patch map[string]interface{}) error {
	args := m.Called(id, patch)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id uint) (*orderModel.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySessionID(sessionID string) (*orderModel.Order, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetItems(orderID uint) ([]orderModel.OrderItem, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderModel.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) GetListByUser(userID uint, offset, limit int) ([]orderModel.Order, int64, error) {
	args := m.Called(userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]orderModel.Order), args.Get(1).(int64), args.Error(2)
}

// MockPaymentGateway 支付网关 Mock
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateSession(ctx context.Context, input gateway.CreateSessionInput) (*gateway.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

func (m *MockPaymentGateway) RetrieveSession(ctx context.Context, sessionID string) (*gateway.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

func newTestService(t *testing.T, carts *MockCartRepository, orders *MockOrderRepository, gw *MockPaymentGateway) CheckoutService {
	t.Setenv(urls.DeployURLEnv, "")
	resolver := urls.NewResolver("http://shop.example.com")
	return NewCheckoutService(carts, orders, gw, resolver, nil, "jpy")
}

func activeCart(id, userID uint) *cartModel.Cart {
	return &cartModel.Cart{
		BaseModel: baseModel.BaseModel{ID: id},
		UserID:    userID,
		Status:    cartModel.CartStatusActive,
	}
}

func TestProcessCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates one order with all cart lines and tax-exclusive total", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(activeCart(7, 1), nil)
		carts.On("GetItems", uint(7)).Return([]cartModel.CartItemDetail{
			{ProductID: 11, Quantity: 2, Name: "Green Tea", Price: "1000", Currency: "jpy", ImageURL: "/images/tea.png"},
			{ProductID: 12, Quantity: 1, Name: "Matcha Bowl", Price: "333", Currency: "jpy", ImageURL: "https://cdn.example.com/bowl.png"},
			{ProductID: 13, Quantity: 3, Name: "Whisk", Price: "500", Currency: "jpy"},
		}, nil)

		var createdOrder *orderModel.Order
		orders.On("Create", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
			createdOrder = args.Get(0).(*orderModel.Order)
			createdOrder.ID = 42
		}).Return(nil)
		orders.On("CreateItems", uint(42), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
		orders.On("Update", uint(42), map[string]interface{}{"stripe_session_id": "cs_test_abc"}).Return(nil)

		var capturedInput gateway.CreateSessionInput
		gw.On("CreateSession", mock.Anything, mock.AnythingOfType("gateway.CreateSessionInput")).
			Run(func(args mock.Arguments) {
				capturedInput = args.Get(1).(gateway.CreateSessionInput)
			}).
			Return(&gateway.Session{ID: "cs_test_abc"}, nil)
		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").
			Return(&gateway.Session{ID: "cs_test_abc", URL: "https://checkout.stripe.com/c/pay/cs_test_abc"}, nil)

		redirectURL, err := svc.ProcessCheckout(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", redirectURL)

		// 订单金额是税前小计：1000*2 + 333 + 500*3 = 3833
		require.NotNil(t, createdOrder)
		assert.Equal(t, uint(1), createdOrder.UserID)
		assert.Equal(t, "3833", createdOrder.TotalAmount)
		assert.Equal(t, "jpy", createdOrder.Currency)
		assert.Equal(t, orderModel.OrderStatusPending, createdOrder.Status)

		// 行项目逐条带到网关，单价含 10% 税
		require.Len(t, capturedInput.LineItems, 3)
		assert.Equal(t, uint(42), capturedInput.OrderID)
		assert.Equal(t, int64(1100), capturedInput.LineItems[0].UnitAmount)
		assert.Equal(t, int64(2), capturedInput.LineItems[0].Quantity)
		assert.Equal(t, int64(366), capturedInput.LineItems[1].UnitAmount) // 333*1.1=366.3 四舍五入
		assert.Equal(t, int64(550), capturedInput.LineItems[2].UnitAmount)

		// 相对图片路径绝对化，绝对路径原样保留，空图不传
		assert.Equal(t, []string{"http://shop.example.com/images/tea.png"}, capturedInput.LineItems[0].Images)
		assert.Equal(t, []string{"https://cdn.example.com/bowl.png"}, capturedInput.LineItems[1].Images)
		assert.Empty(t, capturedInput.LineItems[2].Images)

		// 回跳地址带会话占位符，取消回到购物车
		assert.Equal(t, "http://shop.example.com/api/checkout?session_id={CHECKOUT_SESSION_ID}", capturedInput.SuccessURL)
		assert.Equal(t, "http://shop.example.com/cart", capturedInput.CancelURL)

		orders.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("No active cart creates nothing", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.ProcessCheckout(ctx, 1)

		assert.ErrorIs(t, err, ErrCartNotFound)
		orders.AssertNotCalled(t, "Create", mock.Anything)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("Empty cart creates nothing", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(activeCart(7, 1), nil)
		carts.On("GetItems", uint(7)).Return([]cartModel.CartItemDetail{}, nil)

		_, err := svc.ProcessCheckout(ctx, 1)

		assert.ErrorIs(t, err, ErrEmptyCart)
		orders.AssertNotCalled(t, "Create", mock.Anything)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("Gateway rejection surfaces as session creation failure", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(activeCart(7, 1), nil)
		carts.On("GetItems", uint(7)).Return([]cartModel.CartItemDetail{
			{ProductID: 11, Quantity: 1, Name: "Green Tea", Price: "1000", Currency: "jpy"},
		}, nil)
		orders.On("Create", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
			args.Get(0).(*orderModel.Order).ID = 42
		}).Return(nil)
		orders.On("CreateItems", uint(42), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(nil, errors.New("api key invalid"))

		_, err := svc.ProcessCheckout(ctx, 1)

		assert.ErrorIs(t, err, ErrSessionCreationFailed)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Session without checkout url fails after session id is persisted", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(activeCart(7, 1), nil)
		carts.On("GetItems", uint(7)).Return([]cartModel.CartItemDetail{
			{ProductID: 11, Quantity: 1, Name: "Green Tea", Price: "1000", Currency: "jpy"},
		}, nil)
		orders.On("Create", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
			args.Get(0).(*orderModel.Order).ID = 42
		}).Return(nil)
		orders.On("CreateItems", uint(42), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
		orders.On("Update", uint(42), map[string]interface{}{"stripe_session_id": "cs_test_abc"}).Return(nil)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{ID: "cs_test_abc"}, nil)
		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").Return(&gateway.Session{ID: "cs_test_abc"}, nil)

		_, err := svc.ProcessCheckout(ctx, 1)

		assert.ErrorIs(t, err, ErrCheckoutURLUnavailable)
		orders.AssertExpectations(t)
	})

	t.Run("Rounds tax up on fractional yen", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		carts.On("FindActiveByUserID", uint(1)).Return(activeCart(7, 1), nil)
		carts.On("GetItems", uint(7)).Return([]cartModel.CartItemDetail{
			{ProductID: 11, Quantity: 1, Name: "Sencha", Price: "999", Currency: "jpy"},  // 1098.9 -> 1099
			{ProductID: 12, Quantity: 1, Name: "Gyokuro", Price: "1005", Currency: "jpy"}, // 1105.5 -> 1106
		}, nil)
		orders.On("Create", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
			args.Get(0).(*orderModel.Order).ID = 42
		}).Return(nil)
		orders.On("CreateItems", uint(42), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
		orders.On("Update", uint(42), mock.Anything).Return(nil)

		var capturedInput gateway.CreateSessionInput
		gw.On("CreateSession", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				capturedInput = args.Get(1).(gateway.CreateSessionInput)
			}).
			Return(&gateway.Session{ID: "cs_test_abc"}, nil)
		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").
			Return(&gateway.Session{ID: "cs_test_abc", URL: "https://checkout.stripe.com/c/pay/cs_test_abc"}, nil)

		_, err := svc.ProcessCheckout(ctx, 1)

		require.NoError(t, err)
		require.Len(t, capturedInput.LineItems, 2)
		assert.Equal(t, int64(1099), capturedInput.LineItems[0].UnitAmount)
		assert.Equal(t, int64(1106), capturedInput.LineItems[1].UnitAmount)
	})
}

func TestHandlePaymentSuccess(t *testing.T) {
	ctx := context.Background()

	paidSession := func() *gateway.Session {
		return &gateway.Session{
			ID:            "cs_test_abc",
			PaymentStatus: gateway.PaymentStatusPaid,
			PaymentRef:    "pi_test_123",
			Metadata:      map[string]string{gateway.MetadataOrderIDKey: "42"},
		}
	}

	t.Run("Marks order paid and clears cart", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		orders.On("Update", uint(42), map[string]interface{}{
			"status":                   orderModel.OrderStatusPaid,
			"stripe_payment_intent_id": "pi_test_123",
		}).Return(nil)
		orders.On("GetByID", uint(42)).Return(&orderModel.Order{
			BaseModel: baseModel.BaseModel{ID: 42},
			UserID:    1,
			Status:    orderModel.OrderStatusPaid,
		}, nil)
		carts.On("Clear", uint(1)).Return(nil)

		err := svc.HandlePaymentSuccess(ctx, paidSession())

		require.NoError(t, err)
		orders.AssertExpectations(t)
		carts.AssertExpectations(t)
	})

	t.Run("Duplicate delivery is harmless", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		orders.On("Update", uint(42), mock.Anything).Return(nil).Twice()
		orders.On("GetByID", uint(42)).Return(&orderModel.Order{
			BaseModel: baseModel.BaseModel{ID: 42},
			UserID:    1,
			Status:    orderModel.OrderStatusPaid,
		}, nil).Twice()
		carts.On("Clear", uint(1)).Return(nil).Twice()

		require.NoError(t, svc.HandlePaymentSuccess(ctx, paidSession()))
		require.NoError(t, svc.HandlePaymentSuccess(ctx, paidSession()))

		orders.AssertExpectations(t)
		carts.AssertExpectations(t)
	})

	t.Run("Missing order id touches no store", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		err := svc.HandlePaymentSuccess(ctx, &gateway.Session{
			ID:            "cs_test_abc",
			PaymentStatus: gateway.PaymentStatusPaid,
			Metadata:      map[string]string{},
		})

		assert.ErrorIs(t, err, ErrOrderIDMissing)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		carts.AssertNotCalled(t, "Clear", mock.Anything)
	})

	t.Run("Malformed order id is treated as missing", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		err := svc.HandlePaymentSuccess(ctx, &gateway.Session{
			ID:       "cs_test_abc",
			Metadata: map[string]string{gateway.MetadataOrderIDKey: "not-a-number"},
		})

		assert.ErrorIs(t, err, ErrOrderIDMissing)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Order vanished after update", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		orders.On("Update", uint(42), mock.Anything).Return(nil)
		orders.On("GetByID", uint(42)).Return(nil, gorm.ErrRecordNotFound)

		err := svc.HandlePaymentSuccess(ctx, paidSession())

		assert.ErrorIs(t, err, ErrOrderNotFound)
		carts.AssertNotCalled(t, "Clear", mock.Anything)
	})
}

func TestHandlePaymentFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("Marks order failed and never touches cart", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		orders.On("Update", uint(42), map[string]interface{}{
			"status": orderModel.OrderStatusFailed,
		}).Return(nil)

		err := svc.HandlePaymentFailure(ctx, &gateway.Session{
			ID:       "cs_test_abc",
			Metadata: map[string]string{gateway.MetadataOrderIDKey: "42"},
		})

		require.NoError(t, err)
		orders.AssertExpectations(t)
		carts.AssertNotCalled(t, "Clear", mock.Anything)
	})

	t.Run("Missing order id touches no store", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		err := svc.HandlePaymentFailure(ctx, &gateway.Session{ID: "cs_test_abc"})

		assert.ErrorIs(t, err, ErrOrderIDMissing)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestHandleCheckoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid session settles order and redirects to order page", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").Return(&gateway.Session{
			ID:            "cs_test_abc",
			PaymentStatus: gateway.PaymentStatusPaid,
			PaymentRef:    "pi_test_123",
			Metadata:      map[string]string{gateway.MetadataOrderIDKey: "42"},
		}, nil)
		orders.On("GetBySessionID", "cs_test_abc").Return(&orderModel.Order{
			BaseModel: baseModel.BaseModel{ID: 42},
			UserID:    1,
		}, nil)
		orders.On("Update", uint(42), mock.Anything).Return(nil)
		orders.On("GetByID", uint(42)).Return(&orderModel.Order{
			BaseModel: baseModel.BaseModel{ID: 42},
			UserID:    1,
		}, nil)
		carts.On("Clear", uint(1)).Return(nil)

		redirect, err := svc.HandleCheckoutSession(ctx, "cs_test_abc")

		require.NoError(t, err)
		assert.Equal(t, "/orders/42", redirect)
		carts.AssertExpectations(t)
	})

	t.Run("Unpaid session still lands on order page without settling", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").Return(&gateway.Session{
			ID:            "cs_test_abc",
			PaymentStatus: "unpaid",
			Metadata:      map[string]string{gateway.MetadataOrderIDKey: "42"},
		}, nil)
		orders.On("GetBySessionID", "cs_test_abc").Return(&orderModel.Order{
			BaseModel: baseModel.BaseModel{ID: 42},
			UserID:    1,
		}, nil)

		redirect, err := svc.HandleCheckoutSession(ctx, "cs_test_abc")

		require.NoError(t, err)
		assert.Equal(t, "/orders/42", redirect)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		carts.AssertNotCalled(t, "Clear", mock.Anything)
	})

	t.Run("Unknown session reference", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		gw.On("RetrieveSession", mock.Anything, "cs_test_zzz").Return(&gateway.Session{
			ID:            "cs_test_zzz",
			PaymentStatus: "unpaid",
		}, nil)
		orders.On("GetBySessionID", "cs_test_zzz").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.HandleCheckoutSession(ctx, "cs_test_zzz")

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Gateway retrieval failure propagates", func(t *testing.T) {
		carts := new(MockCartRepository)
		orders := new(MockOrderRepository)
		gw := new(MockPaymentGateway)
		svc := newTestService(t, carts, orders, gw)

		gw.On("RetrieveSession", mock.Anything, "cs_test_abc").Return(nil, errors.New("connection reset"))

		_, err := svc.HandleCheckoutSession(ctx, "cs_test_abc")

		assert.Error(t, err)
		orders.AssertNotCalled(t, "GetBySessionID", mock.Anything)
	})
}
