package service

import (
	"testing"

	"online_shop/internal/domain/product/model"
	baseModel "online_shop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockProductRepository is a mock of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id uint) (*model.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetList(offset, limit int) ([]model.Product, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func createTestProduct(id uint) *model.Product {
	return &model.Product{
		BaseModel:   baseModel.BaseModel{ID: id},
		Name:        "Green Tea",
		Description: "Premium sencha",
		Price:       "1000",
		Currency:    "jpy",
		Stock:       10,
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("Create success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		mockRepo.On("Create", mock.AnythingOfType("*model.Product")).Return(nil)

		product, err := service.CreateProduct(CreateProductInput{
			Name:     "Green Tea",
			Price:    "1000",
			Currency: "jpy",
			Stock:    10,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Green Tea", product.Name)
		assert.Equal(t, "1000", product.Price)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Rejects non-numeric price", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		_, err := service.CreateProduct(CreateProductInput{
			Name:  "Green Tea",
			Price: "abc",
		})

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Rejects negative price", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		_, err := service.CreateProduct(CreateProductInput{
			Name:  "Green Tea",
			Price: "-100",
		})

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestGetProduct(t *testing.T) {
	t.Run("Get product success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		mockRepo.On("GetByID", uint(11)).Return(createTestProduct(11), nil)

		product, err := service.GetProduct(11)

		assert.NoError(t, err)
		assert.Equal(t, uint(11), product.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		mockRepo.On("GetByID", uint(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.GetProduct(99)

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestGetProducts(t *testing.T) {
	t.Run("Get products with pagination", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		products := []model.Product{*createTestProduct(11), *createTestProduct(12)}
		mockRepo.On("GetList", 0, 10).Return(products, int64(2), nil)

		result, total, err := service.GetProducts(1, 10)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, int64(2), total)
		mockRepo.AssertExpectations(t)
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Run("Update success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		mockRepo.On("GetByID", uint(11)).Return(createTestProduct(11), nil)
		mockRepo.On("Update", mock.AnythingOfType("*model.Product")).Return(nil)

		product, err := service.UpdateProduct(11, CreateProductInput{
			Name:     "Hojicha",
			Price:    "800",
			Currency: "jpy",
			Stock:    3,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Hojicha", product.Name)
		assert.Equal(t, "800", product.Price)
		mockRepo.AssertExpectations(t)
	})
}

func TestDeleteProduct(t *testing.T) {
	t.Run("Delete success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, nil)

		mockRepo.On("GetByID", uint(11)).Return(createTestProduct(11), nil)
		mockRepo.On("Delete", mock.AnythingOfType("*model.Product")).Return(nil)

		err := service.DeleteProduct(11)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
