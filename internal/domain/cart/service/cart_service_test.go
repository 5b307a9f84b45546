package service

import (
	"testing"

	"online_shop/internal/domain/cart/model"
	productModel "online_shop/internal/domain/product/model"
	baseModel "online_shop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockCartRepository is a mock of CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindActiveByUserID(userID uint) (*model.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartRepository) FindOrCreateActive(userID uint) (*model.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartRepository) GetItems(cartID uint) ([]model.CartItemDetail, error) {
	args := m.Called(cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItemDetail), args.Error(1)
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

// MockProductRepository is a mock of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id uint) (*productModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetList(offset, limit int) ([]productModel.Product, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]productModel.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func testProduct(id uint, stock int) *productModel.Product {
	return &productModel.Product{
		BaseModel: baseModel.BaseModel{ID: id},
		Name:      "Green Tea",
		Price:     "1000",
		Currency:  "jpy",
		Stock:     stock,
	}
}

func testCart(id, userID uint) *model.Cart {
	return &model.Cart{
		BaseModel: baseModel.BaseModel{ID: id},
		UserID:    userID,
		Status:    model.CartStatusActive,
	}
}

func TestAddToCart(t *testing.T) {
	t.Run("Add item success", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockProducts.On("GetByID", uint(11)).Return(testProduct(11, 5), nil)
		mockRepo.On("FindOrCreateActive", uint(1)).Return(testCart(7, 1), nil)
		mockRepo.On("AddItem", uint(7), uint(11), 2).Return(nil)

		err := service.AddToCart(1, 11, 2)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockProducts.AssertExpectations(t)
	})

	t.Run("Quantity must be positive", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		err := service.AddToCart(1, 11, 0)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		mockProducts.AssertNotCalled(t, "GetByID", mock.Anything)
	})

	t.Run("Unknown product", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockProducts.On("GetByID", uint(99)).Return(nil, gorm.ErrRecordNotFound)

		err := service.AddToCart(1, 99, 1)

		assert.ErrorIs(t, err, ErrProductNotFound)
		mockRepo.AssertNotCalled(t, "FindOrCreateActive", mock.Anything)
	})

	t.Run("Sold out product", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockProducts.On("GetByID", uint(11)).Return(testProduct(11, 0), nil)

		err := service.AddToCart(1, 11, 1)

		assert.ErrorIs(t, err, ErrProductSoldOut)
		mockRepo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetCart(t *testing.T) {
	t.Run("Cart with items and subtotal", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockRepo.On("FindActiveByUserID", uint(1)).Return(testCart(7, 1), nil)
		mockRepo.On("GetItems", uint(7)).Return([]model.CartItemDetail{
			{ProductID: 11, Quantity: 2, Name: "Green Tea", Price: "1000", Currency: "jpy"},
			{ProductID: 12, Quantity: 1, Name: "Matcha Bowl", Price: "2500", Currency: "jpy"},
		}, nil)

		view, err := service.GetCart(1)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), view.CartID)
		assert.Len(t, view.Items, 2)
		assert.Equal(t, "4500", view.Subtotal)
		assert.Equal(t, "jpy", view.Currency)
		mockRepo.AssertExpectations(t)
	})

	t.Run("No cart yields empty view", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockRepo.On("FindActiveByUserID", uint(1)).Return(nil, gorm.ErrRecordNotFound)

		view, err := service.GetCart(1)

		assert.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Equal(t, "0", view.Subtotal)
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("Update success", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockRepo.On("FindActiveByUserID", uint(1)).Return(testCart(7, 1), nil)
		mockRepo.On("UpdateItemQuantity", uint(7), uint(11), 3).Return(nil)

		err := service.UpdateQuantity(1, 11, 3)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("No cart means no item", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockRepo.On("FindActiveByUserID", uint(1)).Return(nil, gorm.ErrRecordNotFound)

		err := service.UpdateQuantity(1, 11, 3)

		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("Remove success", func(t *testing.T) {
		mockRepo := new(MockCartRepository)
		mockProducts := new(MockProductRepository)
		service := NewCartService(mockRepo, mockProducts)

		mockRepo.On("FindActiveByUserID", uint(1)).Return(testCart(7, 1), nil)
		mockRepo.On("RemoveItem", uint(7), uint(11)).Return(nil)

		err := service.RemoveItem(1, 11)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
