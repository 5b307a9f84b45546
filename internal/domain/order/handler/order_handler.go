package handler

import (
	"errors"
	"net/http"
	"strconv"

	"online_shop/internal/domain/order/service"
	"online_shop/internal/pkg/middleware"
	"online_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// GetOrders 订单列表
// @Summary 当前用户的订单列表
// @Tags Order
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	userID := middleware.GetUserID(c)
	orders, total, err := h.service.GetOrders(userID, page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, gin.H{
		"orders": orders,
		"total":  total,
	})
}

// GetOrder 订单详情
// @Summary 订单详情（支付跳转的落地页数据源）
// @Tags Order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response{data=service.OrderDetail}
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid order id")
		return
	}

	userID := middleware.GetUserID(c)
	detail, err := h.service.GetOrder(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, detail)
}
