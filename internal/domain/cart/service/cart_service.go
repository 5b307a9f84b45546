package service

import (
	"errors"

	"online_shop/internal/domain/cart/model"
	"online_shop/internal/domain/cart/repository"
	productRepo "online_shop/internal/domain/product/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrProductNotFound  = errors.New("product not found")
	ErrProductSoldOut   = errors.New("product is out of stock")
	ErrCartItemNotFound = errors.New("item not in cart")
)

// CartView 购物车页数据
type CartView struct {
	CartID   uint                   `json:"cartId"`
	Items    []model.CartItemDetail `json:"items"`
	Subtotal string                 `json:"subtotal"`
	Currency string                 `json:"currency"`
}

type CartService interface {
	AddToCart(userID, productID uint, quantity int) error
	GetCart(userID uint) (*CartView, error)
	UpdateQuantity(userID, productID uint, quantity int) error
	RemoveItem(userID, productID uint) error
}

type cartService struct {
	repo     repository.CartRepository
	products productRepo.ProductRepository
}

func NewCartService(repo repository.CartRepository, products productRepo.ProductRepository) CartService {
	return &cartService{
		repo:     repo,
		products: products,
	}
}

func (s *cartService) AddToCart(userID, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if product.Stock <= 0 {
		return ErrProductSoldOut
	}

	// 惰性建车：第一次加购才创建 active 购物车
	cart, err := s.repo.FindOrCreateActive(userID)
	if err != nil {
		return err
	}

	return s.repo.AddItem(cart.ID, productID, quantity)
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	cart, err := s.repo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 没有购物车时返回空车，而不是报错
			return &CartView{Items: []model.CartItemDetail{}, Subtotal: "0"}, nil
		}
		return nil, err
	}

	items, err := s.repo.GetItems(cart.ID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	currency := ""
	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		currency = item.Currency
	}

	return &CartView{
		CartID:   cart.ID,
		Items:    items,
		Subtotal: subtotal.String(),
		Currency: currency,
	}, nil
}

func (s *cartService) UpdateQuantity(userID, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	cart, err := s.repo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}

	return s.repo.UpdateItemQuantity(cart.ID, productID, quantity)
}

func (s *cartService) RemoveItem(userID, productID uint) error {
	cart, err := s.repo.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}

	return s.repo.RemoveItem(cart.ID, productID)
}
