package handler

import (
	"errors"
	"net/http"
	"strconv"

	"online_shop/internal/domain/cart/service"
	"online_shop/internal/pkg/middleware"
	"online_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

type AddItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1"`
}

type UpdateQuantityInput struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// GetCart 当前购物车
// @Summary 当前购物车
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Response{data=service.CartView}
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)

	view, err := h.service.GetCart(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, view)
}

// AddItem 加入购物车
// @Summary 加入购物车（同商品数量累加）
// @Tags Cart
// @Accept json
// @Produce json
// @Param input body AddItemInput true "Item"
// @Success 200 {object} response.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.service.AddToCart(userID, input.ProductID, input.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, err.Error())
		case errors.Is(err, service.ErrProductSoldOut):
			response.Fail(c, response.ErrProductSoldOut, err.Error())
		case errors.Is(err, service.ErrInvalidQuantity):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}

	response.Success(c, nil)
}

// UpdateQuantity 修改数量
// @Summary 修改购物车行数量
// @Tags Cart
// @Accept json
// @Produce json
// @Param productId path int true "Product ID"
// @Param input body UpdateQuantityInput true "Quantity"
// @Success 200 {object} response.Response
// @Router /cart/items/{productId} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid product id")
		return
	}

	var input UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.service.UpdateQuantity(userID, uint(productID), input.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCartNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, nil)
}

// RemoveItem 移除商品
// @Summary 移除购物车行
// @Tags Cart
// @Produce json
// @Param productId path int true "Product ID"
// @Success 200 {object} response.Response
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid product id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.service.RemoveItem(userID, uint(productID)); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCartNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, nil)
}
