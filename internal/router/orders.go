package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// CreateOrder places an order from the posted items and clears the cart
func (h *handler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.Orders.CreateOrder(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(receipt))
}

func (h *handler) GetUserOrders(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.Orders.GetUserOrders(c.Request.Context(), identityFrom(c), page)
	if err != nil {
		respondError(c, err, "Failed to get orders")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

func (h *handler) GetOrderByNumber(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	order, err := h.Orders.GetOrder(c.Request.Context(), identityFrom(c), orderNumber)
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, global.FieldErrorResponse("Order not found", "orderNumber", "No order exists with this order number", "not_found"))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}
