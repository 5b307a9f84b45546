package service

import (
	"errors"
	"fmt"

	"online_shop/internal/domain/product/model"
	"online_shop/internal/domain/product/repository"
	"online_shop/internal/pkg/worker"
	"online_shop/pkg/utils"

	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       string
	Currency    string
	ImageURL    string
	Stock       int
}

type ProductService interface {
	CreateProduct(input CreateProductInput) (*model.Product, error)
	GetProduct(id uint) (*model.Product, error)
	GetProducts(page, limit int) ([]model.Product, int64, error)
	UpdateProduct(id uint, input CreateProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	repo     repository.ProductRepository
	pushPool *worker.PushWorkerPool // 可为 nil
}

func NewProductService(repo repository.ProductRepository, pushPool *worker.PushWorkerPool) ProductService {
	return &productService{
		repo:     repo,
		pushPool: pushPool,
	}
}

func validatePrice(price string) error {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("invalid price: %q", price)
	}
	if d.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

func (s *productService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Currency:    input.Currency,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	// 新品广播走异步队列：推送失败或队列满都不能影响建品结果
	if s.pushPool != nil {
		s.pushPool.AddTask(worker.PushTask{
			Title: "新商品上架",
			Body:  fmt.Sprintf("「%s」已上架，快来看看吧", product.Name),
			Ext:   map[string]string{"product_id": fmt.Sprintf("%d", product.ID)},
		})
	}

	return product, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	return s.repo.GetByID(id)
}

func (s *productService) GetProducts(page, limit int) ([]model.Product, int64, error) {
	page, limit = utils.NormalizePage(page, limit)
	offset := (page - 1) * limit
	return s.repo.GetList(offset, limit)
}

func (s *productService) UpdateProduct(id uint, input CreateProductInput) (*model.Product, error) {
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Currency = input.Currency
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(product)
}
