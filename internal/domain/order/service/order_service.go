package service

import (
	"errors"

	"online_shop/internal/domain/order/model"
	"online_shop/internal/domain/order/repository"
	"online_shop/pkg/utils"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderDetail 订单详情（含行项目）
type OrderDetail struct {
	Order *model.Order      `json:"order"`
	Items []model.OrderItem `json:"items"`
}

type OrderService interface {
	GetOrder(userID, orderID uint) (*OrderDetail, error)
	GetOrders(userID uint, page, limit int) ([]model.Order, int64, error)
}

type orderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

// GetOrder 带归属校验：只能看自己的订单
func (s *orderService) GetOrder(userID, orderID uint) (*OrderDetail, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	items, err := s.repo.GetItems(order.ID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{
		Order: order,
		Items: items,
	}, nil
}

func (s *orderService) GetOrders(userID uint, page, limit int) ([]model.Order, int64, error) {
	page, limit = utils.NormalizePage(page, limit)
	offset := (page - 1) * limit
	return s.repo.GetListByUser(userID, offset, limit)
}
